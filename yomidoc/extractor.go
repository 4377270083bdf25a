package yomidoc

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Result bundles the extracted text with every report the pipeline
// produces. All reports are additive and independent.
type Result struct {
	Text         string             `json:"text"`
	PageCount    int                `json:"page_count"`
	Inventory    *Inventory         `json:"inventory"`
	Coverage     CoverageReport     `json:"coverage"`
	Footnotes    FootnoteReport     `json:"footnotes"`
	Verification VerificationResult `json:"verification"`
	Quality      QualityReport      `json:"quality"`
	Errors       *ErrorReport       `json:"errors"`
}

// Extractor runs the full pipeline over one document at a time. It is
// not safe for concurrent use; the batch layer creates one per worker.
type Extractor struct {
	cfg       Config
	logger    *zap.Logger
	ocr       OCREngine
	corrector Corrector

	reconstructor *Reconstructor
	tables        *TableDetector
	footnotes     *FootnoteMatcher
	verifier      *Verifier
	scorer        *QualityScorer
	cleaner       *Cleaner
	formatter     *Formatter
}

// ExtractorOption customizes an Extractor.
type ExtractorOption func(*Extractor)

// WithLogger sets the extractor's logger.
func WithLogger(logger *zap.Logger) ExtractorOption {
	return func(e *Extractor) { e.logger = logger }
}

// WithOCR sets the OCR collaborator used for scanned pages.
func WithOCR(engine OCREngine) ExtractorOption {
	return func(e *Extractor) { e.ocr = engine }
}

// WithCorrector sets the text-correction collaborator.
func WithCorrector(c Corrector) ExtractorOption {
	return func(e *Extractor) { e.corrector = c }
}

// NewExtractor builds an extractor from the config.
func NewExtractor(cfg Config, opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		cfg:       cfg,
		logger:    zap.NewNop(),
		ocr:       NoopOCR{},
		corrector: NewCorrector(cfg),
		reconstructor: &Reconstructor{
			ColumnGap:  cfg.ColumnGap,
			LineHeight: cfg.LineHeight,
		},
		tables: &TableDetector{
			MinRows:  cfg.TableMinRows,
			MinCols:  cfg.TableMinCols,
			MinCells: cfg.TableMinCells,
		},
		footnotes: &FootnoteMatcher{
			RegionBoundary:  cfg.FootnoteRegion,
			LineTolerance:   5.0,
			ContextWords:    3,
			AcceptThreshold: 0.5,
		},
		verifier: NewVerifier(),
		scorer:   NewQualityScorer(),
		cleaner: &Cleaner{
			FixSpacing:     cfg.FixSpacing,
			JoinLines:      cfg.JoinLines,
			FixPunctuation: cfg.FixPunctuation,
			NormalizeWidth: cfg.NormalizeCharacters,
		},
		formatter: &Formatter{
			IncludeHeader: cfg.IncludeHeader,
			PageMarkers:   cfg.PageMarkers,
			Statistics:    cfg.Statistics,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract opens a PDF file and runs the pipeline over it.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	src, err := OpenPDF(path)
	if err != nil {
		return Result{}, err
	}
	defer src.Close()
	return e.ExtractSource(ctx, src, filepath.Base(path))
}

// ExtractSource runs the pipeline over any page source. filename is
// used for the output header only.
func (e *Extractor) ExtractSource(ctx context.Context, src PageSource, filename string) (Result, error) {
	total := src.NumPages()
	if total == 0 {
		return Result{}, ErrNoPages
	}

	pages, errReport := AnalyzeDocument(src)
	for _, iss := range errReport.Issues {
		if iss.Type == ErrorMalformed {
			e.logger.Warn("page unreadable, substituting empty page",
				zap.Int("page", iss.Page), zap.String("detail", iss.Detail))
		}
	}

	result := Result{PageCount: total}
	result.Errors = errReport
	result.Inventory = TakeInventory(pages)

	var checkpointer *Checkpointer
	resumed := map[int]string{}
	if e.cfg.CheckpointDir != "" {
		cp, err := NewCheckpointer(e.cfg.CheckpointDir, filename)
		if err != nil {
			e.logger.Warn("checkpointing disabled", zap.Error(err))
		} else {
			checkpointer = cp
			if prev, ok, err := cp.Resume(filename); err != nil {
				e.logger.Warn("ignoring corrupt checkpoint", zap.Error(err))
			} else if ok && prev.TotalPages == total {
				resumed = prev.PageTexts
				e.logger.Info("resuming from checkpoint",
					zap.Int("pages_done", len(resumed)))
			}
		}
	}

	filter := NewMetadataFilter(pages)
	filter.RemoveRepeating = e.cfg.RemoveHeadersFooters
	filter.RemovePageNumbers = e.cfg.RemovePageNumbers

	formatted := make([]FormattedPage, 0, total)
	pageTexts := make(map[int]string, total)
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		fp := FormattedPage{Number: page.Number}
		if text, ok := resumed[page.Number]; ok {
			// The checkpoint stores only the reconstructed text, so
			// table regions are detected again for resumed pages.
			fp.Text = text
			fp.Tables = e.pageTables(page)
		} else {
			fp = e.extractPage(ctx, page, filter, result.Errors)
		}
		pageTexts[page.Number] = fp.Text
		formatted = append(formatted, fp)

		if checkpointer != nil && e.cfg.CheckpointEvery > 0 && (i+1)%e.cfg.CheckpointEvery == 0 {
			if err := checkpointer.Save(filename, total, pageTexts); err != nil {
				e.logger.Warn("checkpoint save failed", zap.Error(err))
			}
		}
	}

	if e.cfg.MatchFootnotes {
		result.Footnotes = e.footnotes.Match(pages)
		attachFootnotes(formatted, result.Footnotes.Matches)
	}

	result.Text = e.formatter.Format(filename, formatted)

	if e.cfg.LLMVerification {
		result.Text = e.correctGarbles(ctx, result.Text)
	}

	result.Coverage = result.Inventory.VerifyExtraction(result.Text)
	if e.cfg.VerifyOutput {
		result.Verification = e.verifier.Verify(result.Text, result.Inventory, total)
	}
	if e.cfg.ScoreQuality {
		coverage := result.Coverage
		var footnotes *FootnoteReport
		if e.cfg.MatchFootnotes {
			footnotes = &result.Footnotes
		}
		result.Quality = e.scorer.Score(result.Text, total, &coverage, footnotes)
	}

	if checkpointer != nil {
		if err := checkpointer.Clear(); err != nil {
			e.logger.Warn("checkpoint cleanup failed", zap.Error(err))
		}
	}

	e.logger.Info("extraction finished",
		zap.String("document", filename),
		zap.Int("pages", total),
		zap.String("grade", result.Quality.Grade),
		zap.Bool("verified", result.Verification.Passed))
	return result, nil
}

// extractPage runs the per-page pipeline: scripts, tables, metadata
// filtering, reconstruction, cleanup, with OCR fallback and the
// recovery cascade behind it.
func (e *Extractor) extractPage(ctx context.Context, page Page, filter *MetadataFilter, errs *ErrorReport) FormattedPage {
	fp := FormattedPage{Number: page.Number}
	if len(page.Words) == 0 {
		return fp
	}

	if len(page.Words) < e.cfg.OCRTriggerWords {
		if ocr, err := e.ocr.Recognize(ctx, page); err == nil && ocr.Success {
			e.logger.Debug("OCR fallback used",
				zap.Int("page", page.Number), zap.Float64("confidence", ocr.Confidence))
			fp.Text = e.cleaner.Clean(ocr.Text)
			return fp
		}
	}

	outcome := RunRecovery(page.Number, []RecoveryStrategy{
		{Name: "layout", Run: func() (string, error) {
			return e.reconstructPage(page, filter, &fp)
		}},
		{Name: "char_merge", Run: func() (string, error) {
			return e.roughPageText(page), nil
		}},
		{Name: "raw", Run: func() (string, error) {
			return rawPageText(page), nil
		}},
	})
	if outcome.Failed {
		errs.FailedTier = append(errs.FailedTier, page.Number)
	} else if outcome.Strategy != "layout" {
		errs.Recovered = append(errs.Recovered, page.Number)
		e.logger.Debug("degraded extraction strategy",
			zap.Int("page", page.Number), zap.String("strategy", outcome.Strategy))
	}

	fp.Text = e.cleaner.Clean(outcome.Text)
	return fp
}

// pageTables runs script attachment and table detection alone, for
// pages whose text came from a checkpoint.
func (e *Extractor) pageTables(page Page) []TableRegion {
	if !e.cfg.DetectTables {
		return nil
	}
	words := page.Words
	if e.cfg.AttachScripts {
		words = AttachScripts(words)
	}
	return e.tables.Detect(words)
}

// reconstructPage is the primary strategy.
func (e *Extractor) reconstructPage(page Page, filter *MetadataFilter, fp *FormattedPage) (string, error) {
	words := page.Words
	if e.cfg.AttachScripts {
		words = AttachScripts(words)
	}
	if e.cfg.DetectTables {
		regions := e.tables.Detect(words)
		if len(regions) > 0 {
			fp.Tables = regions
			words = ExcludeTables(words, regions)
		}
	}
	filtered := filter.Filter(Page{
		Number: page.Number,
		Width:  page.Width,
		Height: page.Height,
		Words:  words,
	})
	text := e.reconstructor.Reconstruct(filtered)
	if text == "" && len(fp.Tables) > 0 {
		// A table-only page is not a failure.
		return " ", nil
	}
	if text == "" {
		return "", fmt.Errorf("layout reconstruction produced no text")
	}
	return text, nil
}

// roughPageText is the second-tier strategy: every word in (top, left)
// order with minimal joining.
func (e *Extractor) roughPageText(page Page) string {
	words := make([]WordBox, len(page.Words))
	copy(words, page.Words)
	sort.SliceStable(words, func(i, j int) bool {
		if words[i].Top != words[j].Top {
			return words[i].Top < words[j].Top
		}
		return words[i].X0 < words[j].X0
	})
	var b strings.Builder
	var lastTop float64
	for i, w := range words {
		if i > 0 {
			if w.Top-lastTop > 2.0 {
				b.WriteByte('\n')
			} else if shouldAddSpace(words[i-1], w) {
				b.WriteByte(' ')
			}
		}
		b.WriteString(w.Text)
		lastTop = w.Top
	}
	return b.String()
}

// rawPageText is the last-tier strategy: concatenation in source order.
func rawPageText(page Page) string {
	parts := make([]string, 0, len(page.Words))
	for _, w := range page.Words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// attachFootnotes distributes matches to the page their definition was
// found on.
func attachFootnotes(pages []FormattedPage, matches []FootnoteMatch) {
	byPage := make(map[int][]FootnoteMatch)
	for _, m := range matches {
		byPage[m.Definition.Page] = append(byPage[m.Definition.Page], m)
	}
	for i := range pages {
		pages[i].Footnotes = byPage[pages[i].Number]
	}
}

var garbleSpanPattern = regexp.MustCompile(`\?{3,}|\x{FFFD}+|□+`)

// correctGarbles sends garbled spans to the corrector and substitutes
// answers above the confidence floor.
func (e *Extractor) correctGarbles(ctx context.Context, text string) string {
	const confidenceFloor = 0.7
	locs := garbleSpanPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		span := text[loc[0]:loc[1]]
		// Rune offsets for the context window.
		startRunes := len([]rune(text[:loc[0]]))
		endRunes := startRunes + len([]rune(span))

		correction, err := e.corrector.Correct(ctx, span, SpanContext(text, startRunes, endRunes))
		b.WriteString(text[last:loc[0]])
		if err == nil && correction.Confidence >= confidenceFloor {
			b.WriteString(correction.Text)
		} else {
			b.WriteString(span)
		}
		last = loc[1]
	}
	b.WriteString(text[last:])
	return b.String()
}
