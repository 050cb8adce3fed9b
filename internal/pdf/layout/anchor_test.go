package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tok(text string, left, top float64) Token {
	return Token{Text: text, Left: left, Top: top, Right: left + 10, Bottom: top + 10}
}

func TestDetectAnchors(t *testing.T) {
	p := DefaultParams()
	column := Rect{X0: 0, Y0: 0, X1: 300, Y1: 760}

	tests := []struct {
		name    string
		tokens  []Token
		column  Rect
		want    []int
		indices []int
	}{
		{
			name:    "number near left edge",
			tokens:  []Token{tok("12.", 40, 100)},
			column:  column,
			want:    []int{12},
			indices: []int{0},
		},
		{
			name:   "number at tolerance is rejected",
			tokens: []Token{tok("3.", 50, 100)},
			column: column,
			want:   nil,
		},
		{
			name:    "tolerance is relative to column",
			tokens:  []Token{tok("7.", 330, 100), tok("8.", 400, 200)},
			column:  Rect{X0: 300, Y0: 0, X1: 600, Y1: 760},
			want:    []int{7},
			indices: []int{0},
		},
		{
			name:    "trailing text after period",
			tokens:  []Token{tok("5.다음", 5, 100)},
			column:  column,
			want:    []int{5},
			indices: []int{0},
		},
		{
			name: "non anchors ignored",
			tokens: []Token{
				tok("1", 5, 100),
				tok(".5", 5, 110),
				tok("가.", 5, 120),
				tok("2.", 5, 130),
			},
			column:  column,
			want:    []int{2},
			indices: []int{3},
		},
		{
			name:   "empty column",
			tokens: nil,
			column: column,
			want:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anchors := DetectAnchors(tt.tokens, tt.column, p)
			require.Len(t, anchors, len(tt.want))
			for i, a := range anchors {
				assert.Equal(t, tt.want[i], a.Number)
				assert.Equal(t, tt.indices[i], a.Index)
			}
		})
	}
}

func TestDetectAnchorsOrderedByTop(t *testing.T) {
	p := DefaultParams()
	column := Rect{X0: 0, Y0: 0, X1: 300, Y1: 760}
	tokens := []Token{
		tok("1.", 10, 80),
		tok("본문", 30, 85),
		tok("2.", 10, 250),
		tok("①", 20, 270),
		tok("3.", 10, 500),
	}

	anchors := DetectAnchors(tokens, column, p)
	require.Len(t, anchors, 3)
	for i := 1; i < len(anchors); i++ {
		assert.GreaterOrEqual(t, anchors[i].Number, anchors[i-1].Number)
		assert.Greater(t, anchors[i].Token.Top, anchors[i-1].Token.Top)
	}
}

func TestPartitionRegions(t *testing.T) {
	column := Rect{X0: 0, Y0: 0, X1: 300, Y1: 752.4}
	anchors := []Anchor{
		{Number: 1, Token: tok("1.", 10, 80)},
		{Number: 2, Token: tok("2.", 10, 300)},
		{Number: 3, Token: tok("3.", 10, 300)},
	}

	regions := PartitionRegions(anchors, column, 752.4)
	require.Len(t, regions, 3)

	assert.Equal(t, 80.0, regions[0].Top)
	assert.Equal(t, 300.0, regions[0].Bottom)
	assert.False(t, regions[0].Degenerate())

	assert.True(t, regions[1].Degenerate(), "equal tops produce an empty band")

	assert.Equal(t, 752.4, regions[2].Bottom)
	assert.Equal(t, column, regions[2].Column)
}

func TestColumns(t *testing.T) {
	cols := Columns(600, 800, DefaultParams())
	require.Len(t, cols, 2)
	assert.Equal(t, Rect{X0: 0, Y0: 0, X1: 300, Y1: 760}, cols[0])
	assert.Equal(t, Rect{X0: 300, Y0: 0, X1: 600, Y1: 760}, cols[1])
}
