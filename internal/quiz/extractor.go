package quiz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/a3tai/mcp-quiz-extractor/internal/logger"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/errors"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/imaging"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/layout"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/render"
	"github.com/a3tai/mcp-quiz-extractor/internal/pdf/security"
)

// Logger is the quiz module logger
var Logger = logger.Get("quiz")

// Document is the page source of one open PDF
type Document interface {
	NumPages() int
	Page(n int) (*pdf.Page, error)
	Close() error
}

// Opener opens a PDF for layout extraction
type Opener func(path string) (Document, error)

// ServiceOpener opens documents through the PDF service, which validates
// them before parsing.
func ServiceOpener(svc *pdf.Service) Opener {
	return func(path string) (Document, error) {
		doc, err := svc.OpenDocument(path)
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
}

// Options controls where and how an Extractor works
type Options struct {
	OutputRoot string
	Params     layout.Params

	// Workers is the number of pages laid out concurrently within a file
	Workers int
}

// OptionOutcome is what happened to one option of one question
type OptionOutcome struct {
	Question int                `json:"question"`
	Index    int                `json:"index"`
	Kind     layout.ContentKind `json:"kind"`
	Value    string             `json:"value"`
	Trim     string             `json:"trim,omitempty"`
	Err      error              `json:"-"`
}

// FileResult is the outcome of processing one PDF
type FileResult struct {
	Path      string                  `json:"path"`
	Round     string                  `json:"round"`
	Kind      DocumentKind            `json:"kind"`
	Pages     int                     `json:"pages"`
	OutputDir string                  `json:"output_dir"`
	CSVPath   string                  `json:"csv_path,omitempty"`
	Questions []QuestionRecord        `json:"questions,omitempty"`
	Answers   []AnswerRecord          `json:"answers,omitempty"`
	Outcomes  []OptionOutcome         `json:"outcomes,omitempty"`
	Skipped   []layout.Skip           `json:"skipped,omitempty"`
	Errors    *errors.ErrorCollection `json:"errors"`
	Duration  time.Duration           `json:"duration"`
}

// Extractor turns question papers and answer keys into per-round tables
type Extractor struct {
	open   Opener
	raster render.Factory
	opts   Options
	output *security.PathValidator
}

// NewExtractor creates an extractor writing below opts.OutputRoot
func NewExtractor(open Opener, raster render.Factory, opts Options) (*Extractor, error) {
	if open == nil {
		return nil, fmt.Errorf("document opener is required")
	}
	if raster == nil {
		return nil, fmt.Errorf("rasterizer factory is required")
	}
	if err := opts.Params.Validate(); err != nil {
		return nil, fmt.Errorf("invalid layout parameters: %w", err)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	output, err := security.NewPathValidator(opts.OutputRoot)
	if err != nil {
		return nil, fmt.Errorf("invalid output root: %w", err)
	}

	return &Extractor{open: open, raster: raster, opts: opts, output: output}, nil
}

// OutputRoot returns the directory every round directory is created in
func (e *Extractor) OutputRoot() string {
	return e.output.GetConfiguredDirectory()
}

// ProcessFile extracts one PDF end to end. Recoverable problems are
// recorded in the result's error collection; the returned error is fatal
// for the file.
func (e *Extractor) ProcessFile(ctx context.Context, path string) (*FileResult, error) {
	start := time.Now()
	result := &FileResult{Path: path, Errors: errors.NewErrorCollection(path)}

	doc, err := e.open(path)
	if err != nil {
		return result, errors.WrapError(errors.ErrorTypeOpenFailed, err).WithFile(path)
	}
	defer doc.Close()

	result.Pages = doc.NumPages()
	if result.Pages == 0 {
		return result, errors.NewPDFError(errors.ErrorTypeInvalidFile, "document has no pages").WithFile(path)
	}

	first, err := doc.Page(1)
	if err != nil {
		return result, errors.WrapError(errors.ErrorTypeOpenFailed, err).WithFile(path).WithPage(1)
	}
	firstText := first.Text()
	result.Round = DetectRound(firstText)
	result.Kind = DetectKind(firstText, filepath.Base(path))

	roundDir, err := e.output.Join(result.Round)
	if err != nil {
		return result, errors.WrapError(errors.ErrorTypeWrite, err).WithFile(path)
	}
	if err := os.MkdirAll(roundDir, 0o750); err != nil {
		return result, errors.WrapError(errors.ErrorTypeWrite, err).WithFile(path)
	}
	result.OutputDir = roundDir

	log := Logger.With("file", filepath.Base(path), "round", result.Round)
	log.Info("processing", "kind", result.Kind, "pages", result.Pages)

	if result.Kind == KindAnswers {
		err = e.processAnswers(ctx, doc, result)
	} else {
		err = e.processQuestions(ctx, doc, result)
	}
	result.Duration = time.Since(start)
	if err != nil {
		return result, err
	}

	log.Info("done",
		"questions", len(result.Questions),
		"answers", len(result.Answers),
		"csv", result.CSVPath,
		"summary", result.Errors.Summary(),
		"elapsed", result.Duration.Round(time.Millisecond))
	return result, nil
}

func (e *Extractor) processAnswers(ctx context.Context, doc Document, result *FileResult) error {
	var tables []pdf.Table
	for n := 1; n <= result.Pages; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		page, err := doc.Page(n)
		if err != nil {
			return errors.WrapError(errors.ErrorTypeOpenFailed, err).WithFile(result.Path).WithPage(n)
		}
		tables = append(tables, page.Tables()...)
	}

	records, dropped := parseAnswers(tables, result.Round)
	for _, d := range dropped {
		result.Errors.Add(errors.NewPDFError(errors.ErrorTypeAnswerPairing, "answer pairing skipped").WithContext(d))
	}
	result.Answers = records
	if len(records) == 0 {
		Logger.Warn("no answers found", "file", filepath.Base(result.Path))
		return nil
	}

	csvPath := filepath.Join(result.OutputDir, AnswerCSVName(result.Round))
	if err := WriteAnswers(csvPath, records); err != nil {
		return errors.WrapError(errors.ErrorTypeWrite, err).WithFile(result.Path)
	}
	result.CSVPath = csvPath
	return nil
}

// pagePlan is the text-only layout of one page
type pagePlan struct {
	page     *pdf.Page
	columns  []layout.ColumnPlan
	contents [][][layout.OptionCount]layout.Content
}

// planPages lays out every page without touching pixels. Pages are planned
// concurrently; results are indexed by page so order never depends on
// scheduling.
func (e *Extractor) planPages(ctx context.Context, doc Document, pages int) ([]pagePlan, error) {
	plans := make([]pagePlan, pages)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for n := 1; n <= pages; n++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, err := doc.Page(n)
			if err != nil {
				return errors.WrapError(errors.ErrorTypeOpenFailed, err).WithPage(n)
			}
			plans[n-1] = e.planPage(page)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return plans, nil
}

func (e *Extractor) planPage(page *pdf.Page) pagePlan {
	p := e.opts.Params
	plan := pagePlan{page: page}
	safe := layout.SafeBottom(page.Height, p)

	for _, column := range layout.Columns(page.Width, page.Height, p) {
		cp := layout.PlanColumn(page.Words(column), column, safe, p)
		contents := make([][layout.OptionCount]layout.Content, len(cp.Questions))
		for i, q := range cp.Questions {
			for j, box := range q.Boxes {
				contents[i][j] = layout.ReadOption(page, box, p)
			}
		}
		plan.columns = append(plan.columns, cp)
		plan.contents = append(plan.contents, contents)
	}
	return plan
}

func (e *Extractor) processQuestions(ctx context.Context, doc Document, result *FileResult) error {
	imagesDir := filepath.Join(result.OutputDir, ImagesDir)
	if err := os.MkdirAll(imagesDir, 0o750); err != nil {
		return errors.WrapError(errors.ErrorTypeWrite, err).WithFile(result.Path)
	}

	plans, err := e.planPages(ctx, doc, result.Pages)
	if err != nil {
		if pe, ok := err.(*errors.PDFError); ok {
			return pe.WithFile(result.Path)
		}
		return err
	}

	r := &assetRenderer{
		factory: e.raster,
		path:    result.Path,
		dir:     imagesDir,
		params:  e.opts.Params,
	}

	for _, plan := range plans {
		for c, cp := range plan.columns {
			for _, s := range cp.Skipped {
				result.Skipped = append(result.Skipped, s)
				result.Errors.Add(skipError(s).WithPage(plan.page.Number).WithQuestion(s.Number))
			}
			for i, q := range cp.Questions {
				if err := ctx.Err(); err != nil {
					return err
				}
				rec, err := e.buildQuestion(ctx, r, plan.page, q, plan.contents[c][i], result)
				if err != nil {
					return err
				}
				result.Questions = append(result.Questions, rec)
			}
		}
	}

	csvPath := filepath.Join(result.OutputDir, QuestionCSVName(result.Round))
	if err := WriteQuestions(csvPath, result.Questions); err != nil {
		return errors.WrapError(errors.ErrorTypeWrite, err).WithFile(result.Path)
	}
	result.CSVPath = csvPath
	return nil
}

// skipError describes why the layout engine dropped a question
func skipError(s layout.Skip) *errors.PDFError {
	if s.Reason == layout.SkipDegenerateRegion {
		return errors.NewPDFError(errors.ErrorTypeDegenerateRegion, "anchor shares its top with the next anchor")
	}
	return errors.NewPDFError(errors.ErrorTypeInsufficientMarkers, fmt.Sprintf("found %d option markers", s.Markers))
}

// buildQuestion renders the stem and image options of one planned question
// and assembles its record.
func (e *Extractor) buildQuestion(ctx context.Context, r *assetRenderer, page *pdf.Page,
	q layout.QuestionPlan, contents [layout.OptionCount]layout.Content, result *FileResult,
) (QuestionRecord, error) {
	number := q.Number()
	rec := QuestionRecord{Round: result.Round, Number: number}

	if q.HasStem {
		trim, err := r.render(ctx, page, q.Stem, QuestionImageName(number))
		if err != nil {
			return rec, errors.WrapError(errors.ErrorTypeStemImage, err).
				WithFile(result.Path).WithPage(page.Number).WithQuestion(number)
		}
		e.noteTrim(result, trim, page.Number, number)
	} else {
		result.Errors.Add(errors.NewPDFError(errors.ErrorTypeDegenerateStem, "stem area too small, image omitted").
			WithPage(page.Number).WithQuestion(number).WithContext(q.Stem.String()))
	}

	for j, content := range contents {
		box := q.Boxes[j]
		outcome := OptionOutcome{Question: number, Index: box.Index, Kind: content.Kind}

		switch content.Kind {
		case layout.ContentText:
			outcome.Value = content.Text

		case layout.ContentError:
			outcome.Value = ErrorValue
			outcome.Err = content.Err
			result.Errors.Add(errors.WrapError(errors.ErrorTypeOptionText, content.Err).
				WithPage(page.Number).WithQuestion(number))

		case layout.ContentImage:
			name := OptionImageName(number, box.Index)
			trim, err := r.render(ctx, page, box.ImageClip(e.opts.Params), name)
			if err != nil {
				outcome.Kind = layout.ContentError
				outcome.Value = ErrorValue
				outcome.Err = err
				result.Errors.Add(errors.WrapError(errors.ErrorTypeOptionImage, err).
					WithPage(page.Number).WithQuestion(number).WithContext(fmt.Sprintf("option %d", box.Index)))
				break
			}
			outcome.Value = name
			outcome.Trim = trim.Status.String()
			e.noteTrim(result, trim, page.Number, number)
		}

		rec.Options[j] = outcome.Value
		result.Outcomes = append(result.Outcomes, outcome)
	}
	return rec, nil
}

func (e *Extractor) noteTrim(result *FileResult, trim imaging.TrimResult, page, number int) {
	if trim.Status != imaging.TrimFailed {
		return
	}
	result.Errors.Add(errors.WrapError(errors.ErrorTypeTrim, trim.Err).
		WithPage(page).WithQuestion(number).WithContext(filepath.Base(trim.Path)))
}

// assetRenderer rasterizes clips of one file into its images directory.
// The rasterizer is created on first use.
type assetRenderer struct {
	factory render.Factory
	path    string
	dir     string
	params  layout.Params

	raster  render.Rasterizer
	initErr error
	started bool
}

func (a *assetRenderer) rasterizer() (render.Rasterizer, error) {
	if !a.started {
		a.started = true
		a.raster, a.initErr = a.factory(a.path)
	}
	return a.raster, a.initErr
}

// render draws clip from page into dir/name and trims the result
func (a *assetRenderer) render(ctx context.Context, page *pdf.Page, clip layout.Rect, name string) (imaging.TrimResult, error) {
	if err := ctx.Err(); err != nil {
		return imaging.TrimResult{}, err
	}
	raster, err := a.rasterizer()
	if err != nil {
		return imaging.TrimResult{}, fmt.Errorf("rasterizer unavailable: %w", err)
	}

	img, err := raster.Render(ctx, page.Number, clip.Intersect(page.Bounds()), a.params.Zoom)
	if err != nil {
		return imaging.TrimResult{}, fmt.Errorf("render %s %s: %w", name, clip, err)
	}

	out := filepath.Join(a.dir, name)
	if err := render.SavePNG(out, img); err != nil {
		return imaging.TrimResult{}, err
	}
	return imaging.Trim(out, a.params.TrimPadding), nil
}
