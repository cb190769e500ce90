package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/boletas/constants"
)

// ParseRun is one extraction attempt over a document, as stored.
type ParseRun struct {
	ID           uuid.UUID           `json:"id"`
	SourceName   string              `json:"source_name"`
	SourceKind   string              `json:"source_kind"` // PDF | TXT | INLINE
	ContentHash  string              `json:"content_hash,omitempty"`
	Forced       string              `json:"forced,omitempty"` // requested format id, "" for automatic
	FormatID     string              `json:"format_id,omitempty"`
	Confidence   float64             `json:"confidence"`
	Status       constants.RunStatus `json:"status"`
	ErrorMessage string              `json:"error_message,omitempty"`
	Fields       json.RawMessage     `json:"fields,omitempty"`
	Text         string              `json:"text,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// ParseRunFilter narrows a listing. Zero values do not filter.
type ParseRunFilter struct {
	FormatID    string
	Status      constants.RunStatus
	ContentHash string
	Limit       int
}
