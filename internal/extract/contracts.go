package extract

import (
	"context"
	"time"
)

// Extractor recognizes and parses one document layout. Implementations are
// stateless and safe for concurrent use.
type Extractor interface {
	ID() string
	Label() string
	// Detect scores how much text looks like this layout. The score is an
	// unbounded heuristic: anchors add to it, anchors of rival layouts subtract.
	Detect(text string) float64
	// Extract never fails; fields it cannot locate stay absent.
	Extract(text string) Fields
}

// Candidate is one extractor's detection score in automatic mode.
type Candidate struct {
	FormatID string  `json:"formatId"`
	Score    float64 `json:"score"`
}

// Result is the envelope returned to callers.
type Result struct {
	FormatID   string      `json:"formatId"`
	Confidence float64     `json:"confidence"`
	Fields     Fields      `json:"fields"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Option is an entry of the format picker shown to users.
type Option struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// TextExtractor turns a document on disk into plain text (first page only).
type TextExtractor interface {
	Extract(ctx context.Context, path string) (TextExtractionResult, error)
}

type TextExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // "PDF" | "TXT"
	Method     string // "pdf-text" | "plain"
	Duration   time.Duration
	Warnings   []string
}
