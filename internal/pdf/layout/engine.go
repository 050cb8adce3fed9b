package layout

// SkipReason explains why an anchor produced no question
type SkipReason string

const (
	SkipInsufficientMarkers SkipReason = "insufficient_markers"
	SkipDegenerateRegion    SkipReason = "degenerate_region"
)

// Skip records an anchor that was dropped
type Skip struct {
	Number  int        `json:"number"`
	Reason  SkipReason `json:"reason"`
	Markers int        `json:"markers"`
}

// QuestionPlan is everything the engine infers for one question before
// any text is read or pixels rendered.
type QuestionPlan struct {
	Region  Region                 `json:"region"`
	Options OptionSet              `json:"options"`
	Boxes   [OptionCount]OptionBox `json:"boxes"`
	Stem    Rect                   `json:"stem"`
	HasStem bool                   `json:"has_stem"`
}

// Number is the question number taken from the anchor
func (q QuestionPlan) Number() int {
	return q.Region.Number
}

// ColumnPlan is the result of laying out one column
type ColumnPlan struct {
	Column    Rect           `json:"column"`
	Questions []QuestionPlan `json:"questions"`
	Skipped   []Skip         `json:"skipped,omitempty"`
}

// PlanColumn runs anchor detection, region partitioning, option location
// and box resolution over the tokens of one column. Tokens must be in
// reading order and lie within the column.
func PlanColumn(tokens []Token, column Rect, safeBottom float64, p Params) ColumnPlan {
	plan := ColumnPlan{Column: column}

	anchors := DetectAnchors(tokens, column, p)
	for _, region := range PartitionRegions(anchors, column, safeBottom) {
		if region.Degenerate() {
			plan.Skipped = append(plan.Skipped, Skip{Number: region.Number, Reason: SkipDegenerateRegion})
			continue
		}
		set, ok := LocateOptions(region, tokens)
		if !ok {
			plan.Skipped = append(plan.Skipped, Skip{
				Number:  region.Number,
				Reason:  SkipInsufficientMarkers,
				Markers: len(CandidateMarkers(region, tokens)),
			})
			continue
		}

		stem, hasStem := StemClip(region, set.Opt1Top(), p)
		plan.Questions = append(plan.Questions, QuestionPlan{
			Region:  region,
			Options: set,
			Boxes:   ResolveBoxes(set, region, p),
			Stem:    stem,
			HasStem: hasStem,
		})
	}
	return plan
}
