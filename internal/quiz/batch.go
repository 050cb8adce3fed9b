package quiz

import (
	"context"
	"fmt"
)

// ProcessAll processes files in order. All files share one failure
// boundary: the first fatal error stops the run and is returned together
// with the results gathered so far, the failed file's partial result last.
func (e *Extractor) ProcessAll(ctx context.Context, paths []string) ([]*FileResult, error) {
	results := make([]*FileResult, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		Logger.Debug("starting file", "index", i+1, "total", len(paths), "path", path)
		res, err := e.ProcessFile(ctx, path)
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("%s: %w", path, err)
		}
	}
	return results, nil
}

// Totals sums question and answer counts over results
func Totals(results []*FileResult) (questions, answers int) {
	for _, r := range results {
		if r == nil {
			continue
		}
		questions += len(r.Questions)
		answers += len(r.Answers)
	}
	return questions, answers
}
