package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNoText means the document carries too little text to parse
	// (typically a scanned PDF without a text layer).
	ErrNoText = errors.New("document has no extractable text")
	// ErrTextTooLarge means the text exceeds the configured cap.
	ErrTextTooLarge = errors.New("text exceeds maximum size")
)

// Limits bounds the text accepted by the service.
type Limits struct {
	MinTextChars int
	MaxTextBytes int
}

// DefaultLimits mirrors the environment defaults of common.LoadConfig.
var DefaultLimits = Limits{MinTextChars: 10, MaxTextBytes: 1 << 20}

// CheckText validates text against the limits. Length is counted on the
// trimmed text for the minimum and on the raw bytes for the maximum.
func (l Limits) CheckText(text string, trimmedChars int) error {
	if l.MaxTextBytes > 0 && len(text) > l.MaxTextBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTextTooLarge, len(text), l.MaxTextBytes)
	}
	if trimmedChars < l.MinTextChars {
		return fmt.Errorf("%w: %d chars (min %d)", ErrNoText, trimmedChars, l.MinTextChars)
	}
	return nil
}
