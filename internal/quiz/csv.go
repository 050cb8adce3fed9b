package quiz

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/imaging"
)

// bom marks the CSV files as UTF-8 for spreadsheet applications
const bom = "\ufeff"

var (
	// QuestionHeader is the column order of question tables
	QuestionHeader = []string{"round", "number", "option_1", "option_2", "option_3", "option_4", "option_5"}

	// AnswerHeader is the column order of answer tables
	AnswerHeader = []string{"round", "number", "answer"}
)

// WriteQuestions writes question records to path
func WriteQuestions(path string, records []QuestionRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := make([]string, 0, len(QuestionHeader))
		row = append(row, r.Round, strconv.Itoa(r.Number))
		row = append(row, r.Options[:]...)
		rows = append(rows, row)
	}
	return WriteCSV(path, QuestionHeader, rows)
}

// WriteAnswers writes answer records to path
func WriteAnswers(path string, records []AnswerRecord) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Round, strconv.Itoa(r.Number), strconv.Itoa(r.Answer)})
	}
	return WriteCSV(path, AnswerHeader, rows)
}

// WriteCSV writes a BOM-prefixed CSV file. The file is written next to path
// and renamed into place.
func WriteCSV(path string, header []string, rows [][]string) error {
	var buf bytes.Buffer
	buf.WriteString(bom)
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to encode header: %w", err)
	}
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to encode rows: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { os.Remove(tmpName) }

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	if err := os.Chmod(tmpName, imaging.FilePerm); err != nil {
		cleanup()
		return fmt.Errorf("failed to set permissions on %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// Sheet is a CSV file read back by column name
type Sheet struct {
	Header []string
	Rows   [][]string

	index map[string]int
}

// ReadCSV reads a CSV file written by WriteCSV or any spreadsheet export.
// A leading BOM is dropped; short rows are padded to the header width.
func ReadCSV(path string) (*Sheet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	data = bytes.TrimPrefix(data, []byte(bom))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	t := &Sheet{Header: header, index: make(map[string]int, len(header))}
	for i, name := range header {
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		for len(row) < len(header) {
			row = append(row, "")
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Has reports whether the table has a column with the given name
func (t *Sheet) Has(column string) bool {
	_, ok := t.index[column]
	return ok
}

// Value returns the cell of row in the named column, or "" when absent
func (t *Sheet) Value(row []string, column string) string {
	i, ok := t.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
