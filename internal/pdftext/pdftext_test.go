package pdftext

import (
	"context"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/icsimport/internal/model"
	"github.com/cleared-dev/icsimport/internal/statementtest"
)

func glyphs(s string, x, y, w float64) []pdf.Text {
	out := make([]pdf.Text, 0, len(s))
	for i, r := range s {
		out = append(out, pdf.Text{X: x + float64(i)*w, Y: y, W: w, FontSize: 9, S: string(r)})
	}
	return out
}

func TestMergeGlyphs(t *testing.T) {
	var in []pdf.Text
	in = append(in, glyphs("06 jan.", 40, 700, 4)...)
	in = append(in, glyphs("07 jan.", 90, 700, 4)...)
	in = append(in, glyphs("Pagina 1", 40, 100, 4)...)

	items := mergeGlyphs(in, 3)
	require.Len(t, items, 3)

	assert.Equal(t, model.TextItem{Text: "06 jan.", X: 40, Y: 700, Page: 3, Width: 28}, items[0])
	assert.Equal(t, "07 jan.", items[1].Text)
	assert.InDelta(t, 90, items[1].X, 0.001)
	assert.Equal(t, "Pagina 1", items[2].Text)
	assert.InDelta(t, 100, items[2].Y, 0.001)
}

func TestMergeGlyphs_ZeroWidthGlyphs(t *testing.T) {
	// Fonts without width metrics report every glyph of a string at the
	// same position.
	in := glyphs("ALBERT HEIJN", 140, 500, 0)
	in = append(in, glyphs("36,00", 500, 500, 0)...)

	items := mergeGlyphs(in, 1)
	require.Len(t, items, 2)
	assert.Equal(t, "ALBERT HEIJN", items[0].Text)
	assert.Equal(t, "36,00", items[1].Text)
}

func TestMergeGlyphs_SmallBaselineJitterStaysInRun(t *testing.T) {
	in := glyphs("AB", 10, 500, 4)
	in[1].Y = 500.4

	items := mergeGlyphs(in, 1)
	require.Len(t, items, 1)
	assert.Equal(t, "AB", items[0].Text)
}

func TestMergeGlyphs_DropsWhitespaceRuns(t *testing.T) {
	in := glyphs("   ", 10, 500, 4)
	in = append(in, glyphs(" Af ", 100, 500, 4)...)

	items := mergeGlyphs(in, 1)
	require.Len(t, items, 1)
	assert.Equal(t, "Af", items[0].Text)
}

func TestMergeGlyphs_Empty(t *testing.T) {
	assert.Empty(t, mergeGlyphs(nil, 1))
}

func TestOpen_Invalid(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("not a pdf"), []byte("%PDF-1.4\n%%EOF")} {
		_, err := Open(data)
		assert.Error(t, err)
	}
}

func TestDocument_RenderedStatement(t *testing.T) {
	doc, err := Open(statementtest.MustRender(statementtest.SampleStatement()))
	require.NoError(t, err)
	require.Equal(t, 2, doc.NumPages())

	items, err := doc.PageItems(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, items)

	var found *model.TextItem
	for i := range items {
		if items[i].Text == "ALBERT HEIJN" {
			found = &items[i]
		}
	}
	require.NotNil(t, found, "ALBERT HEIJN not extracted from %v", items)
	assert.Equal(t, 1, found.Page)
	assert.InDelta(t, 140, found.X, 0.5)
	assert.InDelta(t, statementtest.Baseline(11), found.Y, 0.5)

	page2, err := doc.PageItems(context.Background(), 2)
	require.NoError(t, err)
	texts := make([]string, len(page2))
	for i, it := range page2 {
		texts[i] = it.Text
		assert.Equal(t, 2, it.Page)
	}
	assert.Contains(t, texts, "NS GROEP")
	assert.Contains(t, texts, "571,10")
}

func TestDocument_PageOutOfRange(t *testing.T) {
	doc, err := Open(statementtest.MustRender(statementtest.SampleStatement()))
	require.NoError(t, err)

	_, err = doc.PageItems(context.Background(), 0)
	assert.Error(t, err)
	_, err = doc.PageItems(context.Background(), 3)
	assert.Error(t, err)
}

func TestDocument_Canceled(t *testing.T) {
	doc, err := Open(statementtest.MustRender(statementtest.SampleStatement()))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = doc.PageItems(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
