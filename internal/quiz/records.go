// Package quiz turns exam PDFs into per-round question and answer tables
// plus the cropped images they refer to.
package quiz

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
)

const (
	// UnknownRound is used when the first page names no round
	UnknownRound = "unknown"

	// ErrorValue replaces an option whose text or image could not be read
	ErrorValue = "error"

	// ImagesDir is the per-round directory holding question and option images
	ImagesDir = "images"
)

var roundPattern = regexp.MustCompile(`제(\d+)회`)

// DocumentKind tells question papers and answer keys apart
type DocumentKind string

const (
	KindQuestions DocumentKind = "questions"
	KindAnswers   DocumentKind = "answers"
)

// QuestionRecord is one row of quiz_question_<round>.csv. Options hold the
// option text or the file name of the option image.
type QuestionRecord struct {
	Round   string                     `json:"round"`
	Number  int                        `json:"number"`
	Options [layout.OptionCount]string `json:"options"`
}

// AnswerRecord is one row of quiz_answer_<round>.csv
type AnswerRecord struct {
	Round  string `json:"round"`
	Number int    `json:"number"`
	Answer int    `json:"answer"`
}

// DetectRound returns the round number named as 제N회 in text
func DetectRound(text string) string {
	if m := roundPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return UnknownRound
}

// DetectKind classifies a document from its first page text and file name
func DetectKind(firstPageText, fileName string) DocumentKind {
	if IsAnswerKey(firstPageText, fileName) {
		return KindAnswers
	}
	return KindQuestions
}

// IsAnswerKey reports whether a document is an answer key
func IsAnswerKey(firstPageText, fileName string) bool {
	return strings.Contains(firstPageText, "정답표") || strings.Contains(fileName, "정답")
}

// QuestionImageName is the file name of a question's stem image
func QuestionImageName(number int) string {
	return "q" + strconv.Itoa(number) + ".png"
}

// OptionImageName is the file name of an option rendered as an image
func OptionImageName(number, index int) string {
	return "q" + strconv.Itoa(number) + "a" + strconv.Itoa(index) + ".png"
}

// QuestionCSVName is the question table file name for a round
func QuestionCSVName(round string) string {
	return "quiz_question_" + round + ".csv"
}

// AnswerCSVName is the answer table file name for a round
func AnswerCSVName(round string) string {
	return "quiz_answer_" + round + ".csv"
}
