package layout

// StemClip returns the area holding the question stem: the full column
// width from just above the anchor to just above the first option marker.
// It reports false when the area is too short to be worth rendering.
func StemClip(region Region, opt1Top float64, p Params) (Rect, bool) {
	clip := Rect{
		X0: region.Column.X0,
		Y0: region.Anchor.Token.Top - p.StemTopMargin,
		X1: region.Column.X1,
		Y1: opt1Top - p.StemBottomInset,
	}
	if clip.Height() <= p.MinStemHeight {
		return clip, false
	}
	return clip, true
}
