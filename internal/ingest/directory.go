package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
)

// Scanner walks directories and hashes every parseable file.
type Scanner struct {
	SkipHidden bool
	logger     *slog.Logger
}

func NewScanner(skipHidden bool, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{SkipHidden: skipHidden, logger: logger}
}

// Scan walks root, filters by allowed extension, skips hidden entries if
// requested, and hashes each file. Files whose content repeats an earlier one
// are returned with Deduplicated set. Results follow lexical walk order.
func (s *Scanner) Scan(ctx context.Context, root string) ([]Document, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var docs []Document
	var stats DirStats
	seen := map[string]struct{}{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			docs = append(docs, Document{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if s.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if !AllowedExt(ext) {
			return nil
		}
		stats.Matched++

		hashHex, size, err := HashFile(path)
		if err != nil {
			s.logger.Warn("ingest.hash.failed", "path", path, "err", err)
			docs = append(docs, Document{Path: path, Err: err.Error()})
			stats.Failed++
			return nil
		}
		doc := Document{Path: path, Ext: strings.TrimPrefix(strings.ToLower(ext), "."), HashHex: hashHex, Size: size}
		if _, dup := seen[hashHex]; dup {
			doc.Deduplicated = true
			stats.Deduplicated++
		}
		seen[hashHex] = struct{}{}
		docs = append(docs, doc)
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return docs, stats, fmt.Errorf("walk: %w", err)
	}
	s.logger.Info("ingest.scan.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return docs, stats, nil
}
