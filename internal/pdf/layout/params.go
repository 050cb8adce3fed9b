package layout

import "errors"

// Params holds every tunable constant of the layout engine
type Params struct {
	// AnchorTolerance is the maximum distance from the column's left edge
	// for a question number to count as an anchor.
	AnchorTolerance float64 `json:"anchor_tolerance"`

	// SafeBottomRatio cuts off footers: columns end at pageHeight*ratio.
	SafeBottomRatio float64 `json:"safe_bottom_ratio"`

	// SameLineTolerance groups option markers into visual lines.
	SameLineTolerance float64 `json:"same_line_tolerance"`

	BoxInset        float64 `json:"box_inset"`
	ImageLeftInset  float64 `json:"image_left_inset"`
	ImageEdgeInset  float64 `json:"image_edge_inset"`
	StemTopMargin   float64 `json:"stem_top_margin"`
	StemBottomInset float64 `json:"stem_bottom_inset"`
	MinStemHeight   float64 `json:"min_stem_height"`
	MinTextRunes    int     `json:"min_text_runes"`
	TrimPadding     int     `json:"trim_padding"`
	Zoom            float64 `json:"zoom"`

	// WordTolerance is the x/y tolerance used when grouping glyphs into words.
	WordTolerance float64 `json:"word_tolerance"`
}

// DefaultParams returns the engine constants tuned for two-column exam papers
func DefaultParams() Params {
	return Params{
		AnchorTolerance:   50,
		SafeBottomRatio:   0.95,
		SameLineTolerance: 10,
		BoxInset:          2,
		ImageLeftInset:    15,
		ImageEdgeInset:    5,
		StemTopMargin:     10,
		StemBottomInset:   5,
		MinStemHeight:     10,
		MinTextRunes:      2,
		TrimPadding:       5,
		Zoom:              2,
		WordTolerance:     3,
	}
}

// Validate rejects parameter sets the engine cannot work with
func (p Params) Validate() error {
	switch {
	case p.AnchorTolerance <= 0:
		return errors.New("anchor tolerance must be positive")
	case p.SafeBottomRatio <= 0 || p.SafeBottomRatio > 1:
		return errors.New("safe bottom ratio must be in (0, 1]")
	case p.SameLineTolerance < 0:
		return errors.New("same-line tolerance cannot be negative")
	case p.MinTextRunes < 0:
		return errors.New("minimum text length cannot be negative")
	case p.TrimPadding < 0:
		return errors.New("trim padding cannot be negative")
	case p.Zoom <= 0:
		return errors.New("zoom must be positive")
	case p.WordTolerance < 0:
		return errors.New("word tolerance cannot be negative")
	}
	return nil
}
