package layout

// Region is the vertical band of a column owned by one question
type Region struct {
	Number int     `json:"number"`
	Anchor Anchor  `json:"anchor"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Column Rect    `json:"column"`
}

// Degenerate reports whether the region has no vertical extent, as when
// two anchors share a top. PlanColumn skips such regions.
func (r Region) Degenerate() bool {
	return r.Bottom <= r.Top
}

// PartitionRegions assigns each anchor the band between its own top and
// the next anchor's top. The last anchor extends to safeBottom.
func PartitionRegions(anchors []Anchor, column Rect, safeBottom float64) []Region {
	regions := make([]Region, 0, len(anchors))
	for i, a := range anchors {
		bottom := safeBottom
		if i+1 < len(anchors) {
			bottom = anchors[i+1].Token.Top
		}
		regions = append(regions, Region{
			Number: a.Number,
			Anchor: a,
			Top:    a.Token.Top,
			Bottom: bottom,
			Column: column,
		})
	}
	return regions
}
