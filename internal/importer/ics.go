package importer

import (
	"context"
	"fmt"

	"github.com/cleared-dev/icsimport/internal/ics"
	"github.com/cleared-dev/icsimport/internal/model"
	"github.com/cleared-dev/icsimport/internal/pdftext"
)

// FormatICS is the registry key of the ICS credit-card statement parser.
const FormatICS = "ics"

// ICSParser parses Dutch ICS credit-card statement PDFs.
type ICSParser struct {
	opts []ics.Option
}

// NewICSParser creates an ICSParser passing opts to every statement parse.
func NewICSParser(opts ...ics.Option) *ICSParser {
	return &ICSParser{opts: opts}
}

// Format returns the parser format identifier.
func (p *ICSParser) Format() string { return FormatICS }

// Parse reads the PDF in data and reconstructs the statement.
func (p *ICSParser) Parse(ctx context.Context, data []byte) (*model.ParseResult, error) {
	doc, err := pdftext.Open(data)
	if err != nil {
		return nil, err
	}
	result, err := ics.NewParser(p.opts...).Parse(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("parsing ICS statement: %w", err)
	}
	return result, nil
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry(opts ...ics.Option) *Registry {
	r := NewRegistry()
	r.Register(NewICSParser(opts...))
	return r
}
