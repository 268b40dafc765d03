package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/icsimport/internal/id"
	"github.com/cleared-dev/icsimport/internal/model"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// ErrUnknownFormat is returned for an unsupported output format.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats lists the supported output formats.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatCSV, FormatXLSX}
}

// Write renders result to w in the given format.
func Write(w io.Writer, format string, result *model.ParseResult) error {
	switch strings.ToLower(format) {
	case FormatText, "":
		return WriteText(w, result)
	case FormatJSON:
		return WriteJSON(w, result)
	case FormatCSV:
		return WriteTransactions(w, result)
	case FormatXLSX:
		return WriteXLSX(w, result)
	}
	return fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats(), ", "))
}

// Extension returns the file extension for format, including the dot.
func Extension(format string) string {
	switch strings.ToLower(format) {
	case FormatJSON:
		return ".json"
	case FormatCSV:
		return ".csv"
	case FormatXLSX:
		return ".xlsx"
	}
	return ".txt"
}

// FileName returns the export file name for a statement, such as
// "78179360017_2026-01.csv". The statement ID must be well-formed.
func FileName(statementID, format string) (string, error) {
	if _, _, _, err := id.ParseStatementID(statementID); err != nil {
		return "", err
	}
	return statementID + Extension(format), nil
}
