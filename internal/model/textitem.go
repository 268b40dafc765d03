package model

// TextItem is one positioned run of text emitted by the document renderer.
// Coordinates use a bottom-left origin, so larger Y is higher on the page.
type TextItem struct {
	Text  string
	X     float64
	Y     float64
	Page  int // 1-based
	Width float64
}
