package layout

import (
	"regexp"
	"strconv"
)

var anchorPattern = regexp.MustCompile(`^(\d+)\.`)

// Anchor marks the start of a question inside a column
type Anchor struct {
	// Index is the position of the anchor token in the column's token list.
	Index  int   `json:"index"`
	Token  Token `json:"token"`
	Number int   `json:"number"`
}

// DetectAnchors returns the question-number tokens of a column in token
// order. A token qualifies when it starts with digits followed by a period
// and sits within the anchor tolerance of the column's left edge.
func DetectAnchors(tokens []Token, column Rect, p Params) []Anchor {
	var anchors []Anchor
	for i, tok := range tokens {
		m := anchorPattern.FindStringSubmatch(tok.Text)
		if m == nil {
			continue
		}
		if tok.Left-column.X0 >= p.AnchorTolerance {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		anchors = append(anchors, Anchor{Index: i, Token: tok, Number: n})
	}
	return anchors
}
