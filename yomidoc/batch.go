package yomidoc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	batchDocsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "yomidoc_batch_documents_total",
		Help: "Documents processed by the batch extractor, by outcome.",
	}, []string{"outcome"})

	batchDocDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "yomidoc_batch_document_seconds",
		Help:    "Wall time per document extraction.",
		Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
	})
)

// BatchItem is one document's outcome within a batch run.
type BatchItem struct {
	Path   string        `json:"path"`
	Result *Result       `json:"result,omitempty"`
	Err    error         `json:"-"`
	ErrMsg string        `json:"error,omitempty"`
	Took   time.Duration `json:"took"`
}

// BatchReport summarizes a folder run.
type BatchReport struct {
	RunID     string      `json:"run_id"`
	Items     []BatchItem `json:"items"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
}

// Batch dispatches whole-document extractions to a bounded worker pool.
// Each worker owns an independent extractor and file handle, so no core
// state is shared across documents.
type Batch struct {
	cfg    Config
	logger *zap.Logger
	opts   []ExtractorOption
}

// NewBatch creates a batch runner.
func NewBatch(cfg Config, logger *zap.Logger, opts ...ExtractorOption) *Batch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{cfg: cfg, logger: logger, opts: opts}
}

// Run extracts every document under dir whose relative path matches the
// configured include globs and none of the exclude globs. A failed
// document is recorded and does not abort the run; cancellation drains
// the pool.
func (b *Batch) Run(ctx context.Context, dir string) (BatchReport, error) {
	paths, err := findDocuments(dir, b.cfg.BatchInclude, b.cfg.BatchExclude)
	if err != nil {
		return BatchReport{}, err
	}

	report := BatchReport{RunID: uuid.NewString()}
	b.logger.Info("batch started",
		zap.String("run_id", report.RunID),
		zap.String("dir", dir),
		zap.Int("documents", len(paths)),
		zap.Int("workers", b.cfg.BatchWorkers))

	jobs := make(chan string)
	results := make(chan BatchItem)

	var wg sync.WaitGroup
	for i := 0; i < b.cfg.BatchWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			extractor := NewExtractor(b.cfg, append([]ExtractorOption{WithLogger(b.logger)}, b.opts...)...)
			for path := range jobs {
				results <- b.runOne(ctx, extractor, path)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	for item := range results {
		if item.Err != nil {
			report.Failed++
			batchDocsProcessed.WithLabelValues("failed").Inc()
			b.logger.Warn("document failed",
				zap.String("path", item.Path), zap.Error(item.Err))
		} else {
			report.Succeeded++
			batchDocsProcessed.WithLabelValues("ok").Inc()
		}
		report.Items = append(report.Items, item)
	}

	sort.Slice(report.Items, func(i, j int) bool {
		return report.Items[i].Path < report.Items[j].Path
	})
	b.logger.Info("batch finished",
		zap.String("run_id", report.RunID),
		zap.Int("succeeded", report.Succeeded),
		zap.Int("failed", report.Failed))
	return report, ctx.Err()
}

func (b *Batch) runOne(ctx context.Context, extractor *Extractor, path string) BatchItem {
	start := time.Now()
	result, err := extractor.Extract(ctx, path)
	took := time.Since(start)
	batchDocDuration.Observe(took.Seconds())

	item := BatchItem{Path: path, Took: took}
	if err != nil {
		item.Err = err
		item.ErrMsg = err.Error()
		return item
	}
	item.Result = &result
	return item
}

// findDocuments walks dir, matching each relative path against the
// doublestar globs. An empty include list matches every file; a
// matching exclude pattern prunes whole directories.
func findDocuments(dir string, include, exclude []string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)

		for _, pattern := range exclude {
			matched, err := doublestar.Match(pattern, rel)
			if err != nil {
				return fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
			}
			if matched {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
		}
		if d.IsDir() {
			return nil
		}

		if len(include) == 0 {
			paths = append(paths, path)
			return nil
		}
		for _, pattern := range include {
			matched, err := doublestar.Match(pattern, rel)
			if err != nil {
				return fmt.Errorf("invalid include pattern %q: %w", pattern, err)
			}
			if matched {
				paths = append(paths, path)
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	return paths, nil
}
