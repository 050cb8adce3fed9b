package quiz

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
)

// readQuestions reads a question table back into records
func readQuestions(path string) ([]QuestionRecord, error) {
	t, err := ReadCSV(path)
	if err != nil {
		return nil, err
	}
	records := make([]QuestionRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		n, err := strconv.Atoi(t.Value(row, "number"))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid number: %w", path, i+1, err)
		}
		rec := QuestionRecord{Round: t.Value(row, "round"), Number: n}
		for j := range layout.OptionCount {
			rec.Options[j] = t.Value(row, QuestionHeader[2+j])
		}
		records = append(records, rec)
	}
	return records, nil
}

func TestWriteQuestions_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), QuestionCSVName("77"))
	records := []QuestionRecord{
		{Round: "77", Number: 1, Options: [5]string{"파리", "London, UK", `say "hi"`, "q1a4.png", "multi\nline"}},
		{Round: "77", Number: 2, Options: [5]string{"a1", "b2", "c3", "d4", "e5"}},
	}
	require.NoError(t, WriteQuestions(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "\ufeffround,number,option_1,option_2,option_3,option_4,option_5\n"))

	got, err := readQuestions(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestWriteQuestions_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "q.csv")
	require.NoError(t, WriteQuestions(path, nil))

	got, err := readQuestions(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriteAnswers(t *testing.T) {
	path := filepath.Join(t.TempDir(), AnswerCSVName("5"))
	require.NoError(t, WriteAnswers(path, []AnswerRecord{
		{Round: "5", Number: 1, Answer: 3},
		{Round: "5", Number: 2, Answer: 5},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "\ufeffround,number,answer\n5,1,3\n5,2,5\n", string(data))
}

func TestReadCSV(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "plain.csv")
	require.NoError(t, os.WriteFile(plain, []byte("round,number,answer\n5,3\n"), 0o644))
	sheet, err := ReadCSV(plain)
	require.NoError(t, err)
	require.Len(t, sheet.Rows, 1)
	assert.True(t, sheet.Has("answer"))
	assert.False(t, sheet.Has("option_1"))
	assert.Equal(t, "3", sheet.Value(sheet.Rows[0], "number"))
	assert.Equal(t, "", sheet.Value(sheet.Rows[0], "answer"))
	assert.Equal(t, "", sheet.Value(sheet.Rows[0], "option_1"))

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("\ufeff"), 0o644))
	_, err = ReadCSV(empty)
	assert.Error(t, err)

	_, err = ReadCSV(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("round,number\n5,x\n"), 0o644))
	_, err = readQuestions(bad)
	assert.Error(t, err)
}
