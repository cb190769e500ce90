package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/boletas/internal/extract"
	"github.com/joseph-ayodele/boletas/internal/service"
)

func TestCanonicalFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "auto"},
		{"AUTO", "auto"},
		{"factura", "factura_sii"},
		{" liquidacion_tipo3 ", "liquidacion_tipo3"},
	}
	for _, tc := range tests {
		got, err := canonicalFormat(tc.in)
		if err != nil || got != tc.want {
			t.Errorf("canonicalFormat(%q) = %q, %v; want %q", tc.in, got, err, tc.want)
		}
	}
	if _, err := canonicalFormat("boleta_x"); !errors.Is(err, extract.ErrUnknownFormat) {
		t.Errorf("unknown format: %v", err)
	}
}

func TestPrintOutcome(t *testing.T) {
	id := uuid.New()
	var buf bytes.Buffer
	err := printOutcome(&buf, service.Outcome{
		RunID:      id,
		SourceName: "a.pdf",
		JSON:       []byte(`{"formatId":"sii_clasico","confidence":1,"fields":{}}`),
	})
	if err != nil {
		t.Fatal(err)
	}
	var got struct {
		RunID  string         `json:"run_id"`
		Result map[string]any `json:"result"`
	}
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if got.RunID != id.String() || got.Result["formatId"] != "sii_clasico" {
		t.Errorf("got %+v", got)
	}
}
