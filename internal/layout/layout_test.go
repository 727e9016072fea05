package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCols(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{width: -100, want: 1},
		{width: 0, want: 1},
		{width: 260, want: 1},
		{width: 559, want: 1},
		{width: 560, want: 1},
		{width: 859, want: 1},
		{width: 860, want: 2},
		{width: 1160, want: 3},
		{width: 1920, want: 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CalculateCols(tt.width), "width %d", tt.width)
	}
}

func TestCalculateCols_MatchesFormula(t *testing.T) {
	for w := 260; w <= 4000; w += 7 {
		want := max(1, (w-260)/300)
		assert.Equal(t, want, CalculateCols(w), "width %d", w)
	}
	for w := -50; w <= 260; w++ {
		assert.Equal(t, 1, CalculateCols(w))
	}
}

func TestTerminalGrid(t *testing.T) {
	assert.Equal(t, 1, TerminalGrid.Cols(80))
	assert.Equal(t, 2, TerminalGrid.Cols(86))
	assert.Equal(t, 4, TerminalGrid.Cols(150))
	assert.Equal(t, 1, Grid{}.Cols(500))
}
