package layout

import "fmt"

// Token is a positioned piece of text in page space. The origin is the
// top-left corner of the page and Top grows downward.
type Token struct {
	Text   string  `json:"text"`
	Left   float64 `json:"x0"`
	Top    float64 `json:"top"`
	Right  float64 `json:"x1"`
	Bottom float64 `json:"bottom"`
}

// Bounds returns the token's bounding rectangle
func (t Token) Bounds() Rect {
	return Rect{X0: t.Left, Y0: t.Top, X1: t.Right, Y1: t.Bottom}
}

// Rect is an axis-aligned rectangle in page space
type Rect struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// Width returns the horizontal extent, negative for inverted rectangles
func (r Rect) Width() float64 {
	return r.X1 - r.X0
}

// Height returns the vertical extent, negative for inverted rectangles
func (r Rect) Height() float64 {
	return r.Y1 - r.Y0
}

// Empty reports whether the rectangle has no positive area
func (r Rect) Empty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}

// Contains reports whether o lies fully inside r, edges included
func (r Rect) Contains(o Rect) bool {
	return o.X0 >= r.X0 && o.Y0 >= r.Y0 && o.X1 <= r.X1 && o.Y1 <= r.Y1
}

// Intersect returns the overlap of r and o, which may be empty
func (r Rect) Intersect(o Rect) Rect {
	return Rect{
		X0: max(r.X0, o.X0),
		Y0: max(r.Y0, o.Y0),
		X1: min(r.X1, o.X1),
		Y1: min(r.Y1, o.Y1),
	}
}

func (r Rect) String() string {
	return fmt.Sprintf("(%.1f, %.1f, %.1f, %.1f)", r.X0, r.Y0, r.X1, r.Y1)
}

// Columns splits a page into its two fixed half-width columns, both cut off
// at the safe bottom.
func Columns(pageWidth, pageHeight float64, p Params) []Rect {
	safe := SafeBottom(pageHeight, p)
	half := pageWidth / 2
	return []Rect{
		{X0: 0, Y0: 0, X1: half, Y1: safe},
		{X0: half, Y0: 0, X1: pageWidth, Y1: safe},
	}
}

// SafeBottom is the lowest y coordinate considered part of the page body
func SafeBottom(pageHeight float64, p Params) float64 {
	return pageHeight * p.SafeBottomRatio
}
