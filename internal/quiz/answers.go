package quiz

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/a3tai/mcp-quiz-extractor/internal/pdf"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
)

// answerStride is the width of one (number, answer, spacer) cell group
const answerStride = 3

var (
	numberPattern = regexp.MustCompile(`\d+`)
	answerPattern = regexp.MustCompile(`[1-5①-⑤]`)
)

// ParseAnswerTables reads question number and answer pairs out of the
// tables of an answer key. The result holds one record per number, the
// first one seen, sorted by number.
func ParseAnswerTables(tables []pdf.Table, round string) []AnswerRecord {
	records, _ := parseAnswers(tables, round)
	return records
}

// parseAnswers also describes every pairing it had to drop
func parseAnswers(tables []pdf.Table, round string) ([]AnswerRecord, []string) {
	var records []AnswerRecord
	var dropped []string
	seen := make(map[int]bool)

	for _, table := range tables {
		for r, row := range table {
			for i := 0; i < len(row); i += answerStride {
				numbers := numberPattern.FindAllString(strings.TrimSpace(row[i]), -1)
				if len(numbers) == 0 {
					continue
				}
				if i+1 >= len(row) {
					dropped = append(dropped, fmt.Sprintf("row %d cell %d: no answer cell for %v", r, i, numbers))
					continue
				}
				answers := answerPattern.FindAllString(strings.TrimSpace(row[i+1]), -1)
				if len(answers) != len(numbers) {
					dropped = append(dropped, fmt.Sprintf("row %d cell %d: %d numbers, %d answers",
						r, i, len(numbers), len(answers)))
				}

				for k := 0; k < min(len(numbers), len(answers)); k++ {
					n, err := strconv.Atoi(numbers[k])
					if err != nil {
						dropped = append(dropped, fmt.Sprintf("row %d cell %d: %v", r, i, err))
						continue
					}
					if seen[n] {
						continue
					}
					seen[n] = true
					records = append(records, AnswerRecord{Round: round, Number: n, Answer: AnswerValue(answers[k])})
				}
			}
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Number < records[j].Number
	})
	return records, dropped
}

// AnswerValue converts "1".."5" or "①".."⑤" to its option index, or 0
func AnswerValue(s string) int {
	if idx := layout.GlyphIndex(s); idx > 0 {
		return idx
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > layout.OptionCount {
		return 0
	}
	return n
}
