// Package merge consolidates the per-round question and answer tables under
// an output root into one quiz_total.csv.
package merge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/a3tai/mcp-quiz-extractor/internal/logger"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
	"github.com/a3tai/mcp-quiz-extractor/internal/quiz"
)

// TotalFile is the name of the merged table, written at the output root
const TotalFile = "quiz_total.csv"

// ErrNoInput is returned when no table could be read below the root
var ErrNoInput = errors.New("no CSV files to merge")

// Header is the column order of the merged table
var Header = []string{"round", "number", "option_1", "option_2", "option_3", "option_4", "option_5", "answer"}

// Logger is the merge module logger
var Logger = logger.Get("merge")

// valueColumns are merged by first non-empty value
var valueColumns = Header[2:]

// Row is one merged question keyed by round and number
type Row struct {
	Round   string                     `json:"round"`
	Number  int                        `json:"number"`
	Options [layout.OptionCount]string `json:"options"`
	Answer  string                     `json:"answer"`
}

// SkippedFile is an input that could not be merged
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result describes one merge run
type Result struct {
	Path    string        `json:"path"`
	Files   []string      `json:"files"`
	Skipped []SkippedFile `json:"skipped,omitempty"`
	Rows    []Row         `json:"rows"`
}

type key struct {
	round  string
	number int
}

// Merge reads every CSV below root except quiz_total.csv and writes the
// merged table to root/quiz_total.csv.
func Merge(ctx context.Context, root string) (*Result, error) {
	files, err := Discover(root)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoInput, root)
	}

	result := &Result{Path: filepath.Join(root, TotalFile)}
	m := newMerger()
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := m.addFile(path); err != nil {
			Logger.Warn("skipping file", "path", path, "error", err)
			result.Skipped = append(result.Skipped, SkippedFile{Path: path, Reason: err.Error()})
			continue
		}
		result.Files = append(result.Files, path)
	}
	if len(result.Files) == 0 {
		return result, fmt.Errorf("%w: none of %d files under %s could be read", ErrNoInput, len(files), root)
	}

	result.Rows = m.rows()
	if err := quiz.WriteCSV(result.Path, Header, encode(result.Rows)); err != nil {
		return result, fmt.Errorf("failed to write merged table: %w", err)
	}

	Logger.Info("merged", "files", len(result.Files), "rows", len(result.Rows), "path", result.Path)
	return result, nil
}

// Discover returns the CSV files below root, sorted, excluding the merged
// table itself.
func Discover(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".csv") {
			return nil
		}
		if d.Name() == TotalFile || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

type merger struct {
	rowsByKey map[key]*Row
	order     []key
}

func newMerger() *merger {
	return &merger{rowsByKey: make(map[key]*Row)}
}

// addFile merges one table. A file is taken whole or not at all.
func (m *merger) addFile(path string) error {
	sheet, err := quiz.ReadCSV(path)
	if err != nil {
		return err
	}
	for _, col := range []string{"round", "number"} {
		if !sheet.Has(col) {
			return fmt.Errorf("missing %q column", col)
		}
	}

	keys := make([]key, len(sheet.Rows))
	for i, row := range sheet.Rows {
		n, err := strconv.Atoi(strings.TrimSpace(sheet.Value(row, "number")))
		if err != nil {
			return fmt.Errorf("row %d: invalid number: %w", i+1, err)
		}
		keys[i] = key{round: strings.TrimSpace(sheet.Value(row, "round")), number: n}

		if a := strings.TrimSpace(sheet.Value(row, "answer")); a != "" {
			if _, err := strconv.Atoi(a); err != nil {
				return fmt.Errorf("row %d: invalid answer: %w", i+1, err)
			}
		}
	}

	for i, row := range sheet.Rows {
		r := m.row(keys[i])
		for c, col := range valueColumns {
			if !sheet.Has(col) {
				continue
			}
			v := sheet.Value(row, col)
			if col == "answer" {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				continue
			}
			if dst := r.field(c); *dst == "" {
				*dst = v
			}
		}
	}
	return nil
}

func (m *merger) row(k key) *Row {
	if r, ok := m.rowsByKey[k]; ok {
		return r
	}
	r := &Row{Round: k.round, Number: k.number}
	m.rowsByKey[k] = r
	m.order = append(m.order, k)
	return r
}

// rows returns the merged rows sorted by round then number. Unset answers
// become 0.
func (m *merger) rows() []Row {
	out := make([]Row, 0, len(m.order))
	for _, k := range m.order {
		r := *m.rowsByKey[k]
		if r.Answer == "" {
			r.Answer = "0"
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Round != out[j].Round {
			return out[i].Round < out[j].Round
		}
		return out[i].Number < out[j].Number
	})
	return out
}

// field returns the c-th value column of the row
func (r *Row) field(c int) *string {
	if c < layout.OptionCount {
		return &r.Options[c]
	}
	return &r.Answer
}

func encode(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		rec := make([]string, 0, len(Header))
		rec = append(rec, r.Round, strconv.Itoa(r.Number))
		rec = append(rec, r.Options[:]...)
		rec = append(rec, r.Answer)
		out = append(out, rec)
	}
	return out
}
