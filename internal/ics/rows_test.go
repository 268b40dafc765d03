package ics

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/icsimport/internal/model"
)

func item(text string, x, y float64, page int) model.TextItem {
	return model.TextItem{Text: text, X: x, Y: y, Page: page}
}

func TestGroupRows_ReadingOrder(t *testing.T) {
	items := []model.TextItem{
		item("b2", 200, 700, 1),
		item("a1", 50, 720, 1),
		item("c1", 50, 800, 2),
		item("b1", 50, 701.5, 1),
		item("a2", 200, 719, 1),
	}

	rows := GroupRows(items, DefaultRowTolerance)
	require.Len(t, rows, 3)
	assert.Equal(t, "a1 a2", rows[0].Text())
	assert.Equal(t, "b1 b2", rows[1].Text())
	assert.Equal(t, "c1", rows[2].Text())
	assert.Equal(t, 2, rows[2].Page)
}

func TestGroupRows_ThresholdIsExclusive(t *testing.T) {
	rows := GroupRows([]model.TextItem{
		item("top", 10, 100, 1),
		item("near", 20, 97.5, 1),
		item("far", 30, 97, 1),
	}, DefaultRowTolerance)

	require.Len(t, rows, 2)
	assert.Equal(t, "top near", rows[0].Text())
	assert.Equal(t, "far", rows[1].Text())
}

func TestGroupRows_AnchorIsFirstItem(t *testing.T) {
	// Each item is within tolerance of its neighbour but the last is 4 units
	// below the anchor, so it starts a new row.
	rows := GroupRows([]model.TextItem{
		item("a", 10, 100, 1),
		item("b", 20, 98, 1),
		item("c", 30, 96, 1),
	}, DefaultRowTolerance)

	require.Len(t, rows, 2)
	assert.Equal(t, "a b", rows[0].Text())
	assert.Equal(t, "c", rows[1].Text())
}

func TestGroupRows_NeverCrossesPages(t *testing.T) {
	rows := GroupRows([]model.TextItem{
		item("p1", 10, 100, 1),
		item("p2", 20, 100, 2),
	}, DefaultRowTolerance)

	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Page)
	assert.Equal(t, 2, rows[1].Page)
}

func TestGroupRows_Empty(t *testing.T) {
	assert.Empty(t, GroupRows(nil, DefaultRowTolerance))
}

func TestGroupRows_DoesNotMutateInput(t *testing.T) {
	items := []model.TextItem{item("b", 200, 10, 1), item("a", 100, 10, 1)}
	GroupRows(items, DefaultRowTolerance)
	assert.Equal(t, "b", items[0].Text)
}

func TestGroupRows_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		n := rng.Intn(200)
		items := make([]model.TextItem, n)
		for i := range items {
			items[i] = item(fmt.Sprintf("t%d", i), rng.Float64()*500, rng.Float64()*800, 1+rng.Intn(3))
		}

		rows := GroupRows(items, DefaultRowTolerance)

		seen := make(map[string]int)
		for ri, row := range rows {
			require.NotEmpty(t, row.Items)
			for j, it := range row.Items {
				seen[it.Text]++
				assert.Equal(t, row.Page, it.Page, "row mixes pages")
				assert.Less(t, math.Abs(it.Y-row.Y), DefaultRowTolerance)
				if j > 0 {
					assert.LessOrEqual(t, row.Items[j-1].X, it.X, "row not ordered by X")
				}
			}
			if ri > 0 && rows[ri-1].Page == row.Page {
				assert.Greater(t, rows[ri-1].Y, row.Y, "rows out of reading order")
			}
		}

		assert.Len(t, seen, n)
		for text, count := range seen {
			assert.Equal(t, 1, count, "item %s grouped %d times", text, count)
		}
	}
}

func TestRowTokens(t *testing.T) {
	row := Row{Items: []model.TextItem{
		item(" 06 jan. ", 10, 0, 1),
		item("  ", 20, 0, 1),
		item("ALBERT HEIJN", 30, 0, 1),
	}}
	assert.Equal(t, []string{"06 jan.", "ALBERT HEIJN"}, row.Tokens())
	assert.Equal(t, "06 jan. ALBERT HEIJN", row.Text())
}
