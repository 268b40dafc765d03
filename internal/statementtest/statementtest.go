// Package statementtest builds ICS statement fixtures for tests, both as
// positioned text items and as rendered PDF documents.
package statementtest

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/cleared-dev/icsimport/internal/model"
)

// Cell is one text fragment placed at X on a line.
type Cell struct {
	X    float64
	Text string
}

// Line is a row of cells sharing a baseline.
type Line []Cell

// Page is a sequence of lines from top to bottom.
type Page []Line

const (
	// PageHeight is the height of an A4 page in points.
	PageHeight  = 841.89
	topMargin   = 60.0
	lineSpacing = 14.0
	fontSize    = 9.0
	// glyphWidth approximates Helvetica's average advance at fontSize.
	glyphWidth = 4.5
)

// Expected values of the sample statement.
const (
	SampleStatementID    = "78179360017_2026-01"
	SampleCustomerNumber = "78179360017"
	SampleTotal          = "692.52"
	SampleIBAN           = "NL91ABNA0417164300"
	SampleTransactions   = 5
)

// Baseline returns the bottom-origin Y of the line at index i.
func Baseline(i int) float64 {
	return PageHeight - (topMargin + float64(i)*lineSpacing)
}

// Items converts pages into text items the way a renderer would emit them.
func Items(pages []Page) []model.TextItem {
	var items []model.TextItem
	for p, page := range pages {
		for i, line := range page {
			for _, c := range line {
				if c.Text == "" {
					continue
				}
				items = append(items, model.TextItem{
					Text:  c.Text,
					X:     c.X,
					Y:     Baseline(i),
					Page:  p + 1,
					Width: float64(len(c.Text)) * glyphWidth,
				})
			}
		}
	}
	return items
}

// Render draws pages into a PDF using a core font.
func Render(pages []Page) ([]byte, error) {
	doc := gofpdf.New("P", "pt", "A4", "")
	doc.SetFont("Helvetica", "", fontSize)
	tr := doc.UnicodeTranslatorFromDescriptor("")

	for _, page := range pages {
		doc.AddPage()
		for i, line := range page {
			for _, c := range line {
				if c.Text == "" {
					continue
				}
				doc.Text(c.X, topMargin+float64(i)*lineSpacing, tr(c.Text))
			}
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// MustRender is Render for test setup; it panics on error.
func MustRender(pages []Page) []byte {
	data, err := Render(pages)
	if err != nil {
		panic(err)
	}
	return data
}

// TxLine lays out a domestic transaction row.
func TxLine(txDate, bookDate, desc, city, country, amount, marker string) Line {
	return Line{
		{40, txDate}, {90, bookDate}, {140, desc}, {300, city}, {380, country}, {500, amount}, {550, marker},
	}
}

// ForeignTxLine lays out a transaction row with a foreign amount.
func ForeignTxLine(txDate, bookDate, desc, city, country, foreign, currency, amount, marker string) Line {
	return Line{
		{40, txDate}, {90, bookDate}, {140, desc}, {300, city}, {380, country},
		{420, foreign}, {465, currency}, {500, amount}, {550, marker},
	}
}

// SampleStatement is a two-page January 2026 statement. Its debits sum to
// the stated new-expenses total of 692.52.
func SampleStatement() []Page {
	return []Page{
		{
			{{40, "International Card Services BV"}},
			{{40, "Postbus 23225"}},
			{{40, "1100 DS Diemen"}},
			{{40, "Datum"}, {150, "19 januari 2026"}},
			{{40, "ICS-klantnummer"}, {150, SampleCustomerNumber}},
			{{40, "Vorig saldo"}, {150, "Totaal ontvangen betalingen"}, {300, "Totaal nieuwe uitgaven"}, {450, "Nieuw saldo"}},
			{
				{40, "€ 150,00"}, {100, "Af"}, {150, "€ 150,00"}, {210, "Bij"},
				{300, "€ 692,52"}, {360, "Af"}, {450, "€ 692,52"}, {510, "Af"},
			},
			{{40, "Het totaalbedrag wordt omstreeks 2 februari 2026 afgeschreven van rekening " + SampleIBAN}},
			{{40, "Datum transactie"}, {90, "Datum boeking"}, {140, "Omschrijving"}, {500, "Bedrag in euro's"}},
			{{40, "J. DE VRIES"}},
			TxLine("30 dec.", "02 jan.", "BOL.COM", "UTRECHT", "NLD", "56,52", "Af"),
			TxLine("06 jan.", "07 jan.", "ALBERT HEIJN", "AMSTERDAM", "NLD", "36,00", "Af"),
			ForeignTxLine("10 jan.", "12 jan.", "AMAZON WEB SERVICES", "SEATTLE", "USA", "33,71", "USD", "28,90", "Af"),
			{{140, "Wisselkoers USD 1,16644"}},
			TxLine("14 jan.", "14 jan.", "GEINCASSEERD VORIG SALDO", "", "", "150,00", "Bij"),
			TxLine("15 jan.", "16 jan.", "RESTITUTIE ZALANDO", "BERLIN", "DEU", "25,00", "Bij"),
			{{40, "Pagina 1 van 2"}},
		},
		{
			{{40, "ICS-klantnummer"}, {150, SampleCustomerNumber}},
			{{40, "Datum transactie"}, {90, "Datum boeking"}, {140, "Omschrijving"}, {500, "Bedrag in euro's"}},
			TxLine("20 jan.", "21 jan.", "NS GROEP", "UTRECHT", "NLD", "571,10", "Af"),
			{{40, "Pagina 2 van 2"}},
		},
	}
}

// SampleItems is SampleStatement as text items.
func SampleItems() []model.TextItem {
	return Items(SampleStatement())
}
