package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

var (
	ErrUnsupported = errors.New("unsupported extension")
	ErrTooLarge    = errors.New("file too large")
)

func (e *Extractor) checkSize(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if e.cfg.MaxFileBytes > 0 && info.Size() > e.cfg.MaxFileBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, info.Size(), e.cfg.MaxFileBytes)
	}
	return nil
}

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	text, pages, warns, err := e.pdfToText(ctx, path)
	res := ExtractionResult{SourceType: "PDF", Method: "pdf-text", Pages: pages, Warnings: warns}
	if err != nil {
		return res, fmt.Errorf("pdftotext: %w", err)
	}
	res.Text = text
	if strings.TrimSpace(text) == "" {
		res.Warnings = append(res.Warnings, "pdf has no text layer")
	}
	return res, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-")
	if err != nil {
		return "", 0, []string{string(errb)}, err
	}
	return firstPage(string(out))
}

// firstPage keeps the text before the first form feed and drops NUL bytes.
func firstPage(raw string) (text string, pages int, warnings []string, err error) {
	raw = strings.TrimRight(raw, "\f")
	pages = 1 + strings.Count(raw, "\f")
	text, _, _ = strings.Cut(raw, "\f")
	if strings.ContainsRune(text, 0) {
		text = strings.ReplaceAll(text, "\x00", "")
		warnings = append(warnings, "removed NUL bytes")
	}
	return text, pages, warnings, nil
}

func (e *Extractor) extractPlain(path string) (ExtractionResult, error) {
	b, err := os.ReadFile(path)
	res := ExtractionResult{SourceType: "TXT", Method: "plain", Pages: 1}
	if err != nil {
		return res, fmt.Errorf("read %s: %w", path, err)
	}
	res.Text, res.Pages, res.Warnings, _ = firstPage(string(b))
	return res, nil
}
