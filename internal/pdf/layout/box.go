package layout

import "math"

// OptionBox is the area of the page holding one choice
type OptionBox struct {
	Index  int   `json:"index"`
	Marker Token `json:"marker"`

	// Right is the left edge of the same-line successor, or the column's
	// right edge when the marker ends its line.
	Right float64 `json:"right"`

	// BottomLimit is the top of the next line of markers, or the region
	// bottom for the last line.
	BottomLimit float64 `json:"bottom_limit"`

	Box Rect `json:"box"`
}

// Glyph returns the marker symbol for this option
func (b OptionBox) Glyph() string {
	return OptionGlyphs[b.Index-1]
}

// ImageClip is the area rendered when the option holds no usable text.
// It is inset past the marker glyph and away from the neighbours.
func (b OptionBox) ImageClip(p Params) Rect {
	return Rect{
		X0: b.Marker.Left + p.ImageLeftInset,
		Y0: b.Marker.Top - p.BoxInset,
		X1: b.Right - p.ImageEdgeInset,
		Y1: b.BottomLimit - p.ImageEdgeInset,
	}
}

// ResolveBoxes derives the five option boxes from a located option set.
// Each marker's right bound comes from the first later marker on the same
// visual line, its bottom bound from the first marker on a lower line.
func ResolveBoxes(set OptionSet, region Region, p Params) [OptionCount]OptionBox {
	var boxes [OptionCount]OptionBox
	for j, cur := range set.Markers {
		right := region.Column.X1
		for _, o := range set.Markers {
			if math.Abs(o.Top-cur.Top) < p.SameLineTolerance && o.Left > cur.Left {
				right = o.Left
				break
			}
		}

		bottom := region.Bottom
		for _, o := range set.Markers {
			if o.Top > cur.Top+p.SameLineTolerance {
				bottom = o.Top
				break
			}
		}

		boxes[j] = OptionBox{
			Index:       j + 1,
			Marker:      cur,
			Right:       right,
			BottomLimit: bottom,
			Box: Rect{
				X0: cur.Left,
				Y0: cur.Top - p.BoxInset,
				X1: right,
				Y1: bottom - p.BoxInset,
			},
		}
	}
	return boxes
}
