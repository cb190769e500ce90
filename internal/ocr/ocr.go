package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/joseph-ayodele/boletas/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"

	// MaxFileBytes rejects inputs larger than this before any work. 0 = no limit.
	MaxFileBytes int64
}

type ExtractionResult struct {
	Text       string
	Pages      int    // pages in the source; only the first one is returned
	SourceType string // "PDF" | "TXT"
	Method     string // "pdf-text" | "plain"
	Duration   time.Duration
	Warnings   []string
}

// Extractor turns a document on disk into the text of its first page.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner replaces the os/exec runner, mostly for tests.
func WithRunner(r Runner) Option {
	return func(e *Extractor) {
		if r != nil {
			e.runner = r
		}
	}
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Extract picks a strategy based on file extension.
func (e *Extractor) Extract(ctx context.Context, path string) (ExtractionResult, error) {
	start := time.Now()
	ext := constants.NormalizeExt(filepath.Ext(path))
	e.logger.Debug("starting text extraction", "path", path, "ext", ext)

	if err := e.checkSize(path); err != nil {
		return ExtractionResult{}, err
	}

	var (
		res ExtractionResult
		err error
	)
	switch constants.SourceKindForExt(ext) {
	case "PDF":
		res, err = e.extractPDF(ctx, path)
	case "TXT":
		res, err = e.extractPlain(path)
	default:
		e.logger.Error("unsupported extension", "extension", ext)
		return ExtractionResult{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	e.logger.Debug("text extraction ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
