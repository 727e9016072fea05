// Package layout computes how many columns a result grid renders in.
package layout

// Grid describes a responsive grid: a fixed offset (sidebar) followed by columns of
// fixed width.
type Grid struct {
	Offset int
	Column int
}

var (
	// PixelGrid is the browser layout: a 260px sidebar and 300px cards.
	PixelGrid = Grid{Offset: 260, Column: 300}

	// TerminalGrid is the same proportion in terminal cells.
	TerminalGrid = Grid{Offset: 26, Column: 30}
)

// Cols returns max(1, floor((width-Offset)/Column)). It never returns less than one.
func (g Grid) Cols(width int) int {
	if g.Column <= 0 {
		return 1
	}
	avail := width - g.Offset
	if avail < g.Column {
		return 1
	}
	return avail / g.Column
}

// CalculateCols applies PixelGrid to a viewport width.
func CalculateCols(viewportWidth int) int {
	return PixelGrid.Cols(viewportWidth)
}
