// Package pdftext turns PDF bytes into positioned text runs.
package pdftext

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/cleared-dev/icsimport/internal/model"
)

// ErrNoPages is returned for documents without any pages.
var ErrNoPages = errors.New("PDF has no pages")

// Document is an opened PDF whose pages can be read as text items.
type Document struct {
	reader *pdf.Reader
}

// Open parses a PDF held in memory.
func Open(data []byte) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("opening PDF: library panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	if r.NumPage() == 0 {
		return nil, ErrNoPages
	}
	return &Document{reader: r}, nil
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return d.reader.NumPage()
}

// PageItems returns the text runs of a 1-based page.
func (d *Document) PageItems(ctx context.Context, page int) (items []model.TextItem, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if page < 1 || page > d.NumPages() {
		return nil, fmt.Errorf("page %d out of range 1..%d", page, d.NumPages())
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("reading page %d: library panic: %v", page, r)
		}
	}()

	p := d.reader.Page(page)
	if p.V.IsNull() {
		return nil, nil
	}
	return mergeGlyphs(p.Content().Text, page), nil
}

// sameLine is the maximum baseline difference for glyphs of one run.
const sameLine = 1.0

// runGap is the largest horizontal gap, as a fraction of the font size,
// between glyphs of one run.
const runGap = 0.5

// mergeGlyphs joins consecutive glyphs into runs. A run breaks when the
// baseline moves or the next glyph is not adjacent to the previous one.
func mergeGlyphs(glyphs []pdf.Text, page int) []model.TextItem {
	var items []model.TextItem
	var sb strings.Builder
	var start, prev pdf.Text
	open := false

	flush := func() {
		if !open {
			return
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			items = append(items, model.TextItem{
				Text:  text,
				X:     start.X,
				Y:     start.Y,
				Page:  page,
				Width: prev.X + prev.W - start.X,
			})
		}
		sb.Reset()
		open = false
	}

	for _, g := range glyphs {
		if open {
			tol := runGap * math.Max(g.FontSize, 1)
			gap := g.X - (prev.X + prev.W)
			if math.Abs(g.Y-prev.Y) > sameLine || gap > tol || gap < -tol {
				flush()
			}
		}
		if !open {
			start = g
			open = true
		}
		sb.WriteString(g.S)
		prev = g
	}
	flush()
	return items
}
