package ics

import (
	"math"
	"sort"
	"strings"

	"github.com/cleared-dev/icsimport/internal/model"
)

// DefaultRowTolerance is the maximum Y distance, in layout units, between a
// row's anchor and another fragment on the same logical line.
const DefaultRowTolerance = 3.0

// Row is a reconstructed logical line: fragments on one page with nearly
// equal Y, ordered left to right.
type Row struct {
	Page  int
	Y     float64 // anchor Y, taken from the row's first fragment
	Items []model.TextItem
}

// Text returns the row's fragments joined by single spaces.
func (r Row) Text() string {
	return strings.Join(r.Tokens(), " ")
}

// Tokens returns the trimmed, non-empty fragment texts in X order.
func (r Row) Tokens() []string {
	tokens := make([]string, 0, len(r.Items))
	for _, it := range r.Items {
		if s := strings.TrimSpace(it.Text); s != "" {
			tokens = append(tokens, s)
		}
	}
	return tokens
}

// GroupRows partitions text fragments into rows in reading order: page
// ascending, then top to bottom, then left to right. Rows never span pages.
func GroupRows(items []model.TextItem, tolerance float64) []Row {
	if len(items) == 0 {
		return nil
	}

	sorted := make([]model.TextItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Page != b.Page {
			return a.Page < b.Page
		}
		if a.Y != b.Y {
			return a.Y > b.Y
		}
		return a.X < b.X
	})

	var rows []Row
	var cur *Row
	for _, it := range sorted {
		if cur == nil || it.Page != cur.Page || math.Abs(it.Y-cur.Y) >= tolerance {
			rows = append(rows, Row{Page: it.Page, Y: it.Y})
			cur = &rows[len(rows)-1]
		}
		cur.Items = append(cur.Items, it)
	}

	for i := range rows {
		items := rows[i].Items
		sort.SliceStable(items, func(a, b int) bool {
			return items[a].X < items[b].X
		})
	}
	return rows
}

// FullText joins all row texts with newlines.
func FullText(rows []Row) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.Text()
	}
	return strings.Join(lines, "\n")
}
