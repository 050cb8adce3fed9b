package pdf

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
)

// Page holds the positioned glyphs of one PDF page. Coordinates have their
// origin at the top-left corner of the MediaBox. A Page is immutable once
// loaded and safe for concurrent use.
type Page struct {
	Number int
	Width  float64
	Height float64
	Chars  []layout.Token

	wordTolerance float64
}

// Table is a grid of cell texts, row-major
type Table [][]string

// NewPage builds a page from already positioned glyphs
func NewPage(number int, width, height float64, chars []layout.Token) *Page {
	return &Page{
		Number:        number,
		Width:         width,
		Height:        height,
		Chars:         chars,
		wordTolerance: DefaultWordTolerance,
	}
}

// Bounds returns the page rectangle
func (p *Page) Bounds() layout.Rect {
	return layout.Rect{X0: 0, Y0: 0, X1: p.Width, Y1: p.Height}
}

// Words groups the glyphs lying fully inside area into words, in reading
// order: lines top to bottom, words left to right.
func (p *Page) Words(area layout.Rect) []layout.Token {
	var words []layout.Token
	for _, line := range p.lines(area) {
		words = append(words, line...)
	}
	return words
}

// Text returns the text of the whole page, one line per visual line
func (p *Page) Text() string {
	return joinLines(p.lines(p.Bounds()))
}

// TextWithin returns the text of the glyphs lying fully inside area. The
// area must have positive size and lie within the page.
func (p *Page) TextWithin(area layout.Rect) (string, error) {
	if area.Empty() {
		return "", fmt.Errorf("bounding box %s has no area", area)
	}
	if !p.Bounds().Contains(area) {
		return "", fmt.Errorf("bounding box %s is not fully within page %s", area, p.Bounds())
	}
	return joinLines(p.lines(area)), nil
}

// lines clusters the words inside area into visual lines
func (p *Page) lines(area layout.Rect) [][]layout.Token {
	var chars []layout.Token
	for _, c := range p.Chars {
		if area.Contains(c.Bounds()) {
			chars = append(chars, c)
		}
	}
	if len(chars) == 0 {
		return nil
	}

	tol := p.wordTolerance
	sort.SliceStable(chars, func(i, j int) bool {
		return chars[i].Top < chars[j].Top
	})

	var lines [][]layout.Token
	start := 0
	for i := 1; i <= len(chars); i++ {
		if i < len(chars) && math.Abs(chars[i].Top-chars[start].Top) <= tol {
			continue
		}
		if words := groupWords(chars[start:i], tol); len(words) > 0 {
			lines = append(lines, words)
		}
		start = i
	}
	return lines
}

// groupWords splits one line of glyphs into words. A blank glyph or a
// horizontal gap wider than tol ends the current word.
func groupWords(line []layout.Token, tol float64) []layout.Token {
	sort.SliceStable(line, func(i, j int) bool {
		return line[i].Left < line[j].Left
	})

	var words []layout.Token
	var cur []layout.Token
	flush := func() {
		if len(cur) > 0 {
			words = append(words, mergeChars(cur))
			cur = nil
		}
	}

	for _, c := range line {
		if isBlank(c.Text) {
			flush()
			continue
		}
		if len(cur) > 0 && c.Left-cur[len(cur)-1].Right > tol {
			flush()
		}
		cur = append(cur, c)
	}
	flush()
	return words
}

func mergeChars(chars []layout.Token) layout.Token {
	var b strings.Builder
	w := chars[0]
	w.Text = ""
	for _, c := range chars {
		b.WriteString(c.Text)
		w.Left = min(w.Left, c.Left)
		w.Top = min(w.Top, c.Top)
		w.Right = max(w.Right, c.Right)
		w.Bottom = max(w.Bottom, c.Bottom)
	}
	w.Text = b.String()
	return w
}

func joinLines(lines [][]layout.Token) string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		texts := make([]string, len(line))
		for i, w := range line {
			texts[i] = w.Text
		}
		out = append(out, strings.Join(texts, " "))
	}
	return strings.Join(out, "\n")
}

// Tables detects a text-aligned table on the page. Columns are the
// horizontal bands covered by words on enough lines, separated by the
// gaps every row leaves blank; each visual line becomes a row. Words are
// placed by their centre, so centred and right-aligned cells stay in one
// column. Pages without at least two columns yield no table.
func (p *Page) Tables() []Table {
	lines := p.lines(p.Bounds())
	if len(lines) < 2 {
		return nil
	}

	snap := max(p.wordTolerance, 1)
	columns := columnSpans(lines, snap, max(2, len(lines)*3/10))
	if len(columns) < 2 {
		return nil
	}

	var table Table
	for _, line := range lines {
		row := make([]string, len(columns))
		filled := false
		for _, w := range line {
			idx := nearestColumn((w.Left+w.Right)/2, columns, snap*3)
			if idx < 0 {
				continue
			}
			if row[idx] != "" {
				row[idx] += " "
			}
			row[idx] += w.Text
			filled = true
		}
		if filled {
			table = append(table, row)
		}
	}
	if len(table) == 0 {
		return nil
	}
	return []Table{table}
}

// span is a horizontal interval of the page
type span struct {
	x0, x1 float64
}

// lineSpans merges the words of one line into the intervals they cover.
// Words closer than twice snap share an interval.
func lineSpans(line []layout.Token, snap float64) []span {
	var spans []span
	for _, w := range line {
		if n := len(spans); n > 0 && w.Left-spans[n-1].x1 <= 2*snap {
			spans[n-1].x1 = max(spans[n-1].x1, w.Right)
			continue
		}
		spans = append(spans, span{x0: w.Left, x1: w.Right})
	}
	return spans
}

// columnSpans returns the intervals covered by at least minCount lines,
// left to right.
func columnSpans(lines [][]layout.Token, snap float64, minCount int) []span {
	type edge struct {
		x     float64
		delta int
	}
	var edges []edge
	for _, line := range lines {
		for _, s := range lineSpans(line, snap) {
			edges = append(edges, edge{s.x0, 1}, edge{s.x1, -1})
		}
	}
	// openings sort before closings at the same x so touching spans join
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].x != edges[j].x {
			return edges[i].x < edges[j].x
		}
		return edges[i].delta > edges[j].delta
	})

	var columns []span
	depth := 0
	start := 0.0
	for _, e := range edges {
		prev := depth
		depth += e.delta
		switch {
		case prev < minCount && depth >= minCount:
			start = e.x
		case prev >= minCount && depth < minCount:
			columns = append(columns, span{x0: start, x1: e.x})
		}
	}
	return columns
}

// nearestColumn returns the column containing x, or the closest one within
// limit of its edges, or -1.
func nearestColumn(x float64, columns []span, limit float64) int {
	best := -1
	bestDist := math.MaxFloat64
	for i, c := range columns {
		d := 0.0
		switch {
		case x < c.x0:
			d = c.x0 - x
		case x > c.x1:
			d = x - c.x1
		}
		if d < bestDist && d <= limit {
			best, bestDist = i, d
		}
	}
	return best
}
