package layout

import "sort"

// OptionCount is the number of choices every question must carry
const OptionCount = 5

// OptionGlyphs are the circled markers that introduce each choice, in order
var OptionGlyphs = [OptionCount]string{"①", "②", "③", "④", "⑤"}

// GlyphIndex returns the 1-based option index of a marker glyph, or 0
func GlyphIndex(s string) int {
	for i, g := range OptionGlyphs {
		if s == g {
			return i + 1
		}
	}
	return 0
}

// OptionSet is the five markers chosen for a question, ordered by
// (top, left).
type OptionSet struct {
	Markers [OptionCount]Token `json:"markers"`
}

// Opt1Top is the top of the first chosen marker; the stem ends above it
func (s OptionSet) Opt1Top() float64 {
	return s.Markers[0].Top
}

// CandidateMarkers returns the glyph tokens lying strictly inside the
// region's vertical band.
func CandidateMarkers(region Region, tokens []Token) []Token {
	var out []Token
	for _, tok := range tokens {
		if GlyphIndex(tok.Text) == 0 {
			continue
		}
		if tok.Top > region.Top && tok.Top < region.Bottom {
			out = append(out, tok)
		}
	}
	return out
}

// LocateOptions picks the bottom-most five markers of a region. It reports
// false when the region holds fewer than five candidates, in which case the
// question is skipped.
func LocateOptions(region Region, tokens []Token) (OptionSet, bool) {
	candidates := CandidateMarkers(region, tokens)
	if len(candidates) < OptionCount {
		return OptionSet{}, false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Top != candidates[j].Top {
			return candidates[i].Top < candidates[j].Top
		}
		return candidates[i].Left < candidates[j].Left
	})

	var set OptionSet
	copy(set.Markers[:], candidates[len(candidates)-OptionCount:])
	return set, true
}
