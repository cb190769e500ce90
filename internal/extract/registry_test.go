package extract

import (
	"errors"
	"reflect"
	"testing"
)

type stubExtractor struct {
	id    string
	score float64
}

func (s stubExtractor) ID() string            { return s.id }
func (s stubExtractor) Label() string         { return "stub " + s.id }
func (s stubExtractor) Detect(string) float64 { return s.score }
func (s stubExtractor) Extract(string) Fields { return Fields{Description: s.id} }

func TestParseAutoPicksRankedLayout(t *testing.T) {
	reg := Default()
	for _, id := range DefaultRanking {
		t.Run(id, func(t *testing.T) {
			res, err := reg.Parse(readFixture(t, id), "")
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if res.FormatID != id {
				t.Fatalf("FormatID = %q, want %q (candidates %+v)", res.FormatID, id, res.Candidates)
			}
			if len(res.Candidates) != len(DefaultRanking) {
				t.Fatalf("got %d candidates, want %d", len(res.Candidates), len(DefaultRanking))
			}
			for _, c := range res.Candidates {
				if c.FormatID == id && c.Score != res.Confidence {
					t.Fatalf("confidence %v differs from candidate score %v", res.Confidence, c.Score)
				}
				if c.Score > res.Confidence {
					t.Fatalf("candidate %s scored %v above winner %v", c.FormatID, c.Score, res.Confidence)
				}
			}
		})
	}
}

func TestParseAutoMatchesExtractOnWinner(t *testing.T) {
	reg := Default()
	text := readFixture(t, "factura_sii")
	res, err := reg.Parse(text, "auto")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	e, _ := reg.ByID(res.FormatID)
	if !reflect.DeepEqual(res.Fields, e.Extract(text)) {
		t.Fatalf("auto fields differ from direct extraction")
	}
	if res.Confidence < 1.09 || res.Confidence > 1.11 {
		t.Fatalf("Confidence = %v, want 1.1", res.Confidence)
	}
}

func TestParseForcedEveryLayout(t *testing.T) {
	reg := Default()
	for _, e := range reg.Dispatch() {
		text := readFixture(t, e.ID())
		res, err := reg.Parse(text, e.ID())
		if err != nil {
			t.Fatalf("%s: %v", e.ID(), err)
		}
		if res.FormatID != e.ID() || res.Confidence != 1 {
			t.Fatalf("%s: got %q confidence %v", e.ID(), res.FormatID, res.Confidence)
		}
		if res.Candidates != nil {
			t.Fatalf("%s: forced mode should not report candidates", e.ID())
		}
		if !reflect.DeepEqual(res.Fields, e.Extract(text)) {
			t.Fatalf("%s: forced fields differ from direct extraction", e.ID())
		}
	}
}

func TestParseForcedOnGarbage(t *testing.T) {
	res, err := Default().Parse("nada que ver", "factura_retail")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if res.Confidence != 1 || !res.Fields.IsEmpty() {
		t.Fatalf("got %+v", res)
	}
}

func TestParseUnknownFormat(t *testing.T) {
	_, err := Default().Parse("BOLETA DE HONORARIOS", "factura_inexistente")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err = %v, want ErrUnknownFormat", err)
	}
	var ufe *UnknownFormatError
	if !errors.As(err, &ufe) || ufe.ID != "factura_inexistente" {
		t.Fatalf("err = %#v, want UnknownFormatError carrying the id", err)
	}
}

func TestParseTieGoesToFirstRegistered(t *testing.T) {
	reg, err := NewRegistry([]Extractor{
		stubExtractor{"a", 0.5},
		stubExtractor{"b", 0.5},
		stubExtractor{"c", 0.2},
	}, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	res, err := reg.Parse("x", "")
	if err != nil {
		t.Fatal(err)
	}
	if res.FormatID != "a" || res.Fields.Description != "a" {
		t.Fatalf("winner = %q, want a", res.FormatID)
	}
}

func TestParseAllNegativePicksHighest(t *testing.T) {
	reg, err := NewRegistry([]Extractor{
		stubExtractor{"a", -1},
		stubExtractor{"b", -0.2},
		stubExtractor{"c", -0.7},
	}, []string{"a", "b", "c"})
	if err != nil {
		t.Fatal(err)
	}
	res, _ := reg.Parse("", "")
	if res.FormatID != "b" || res.Confidence != -0.2 {
		t.Fatalf("got %q %v, want b -0.2", res.FormatID, res.Confidence)
	}
}

func TestParseRankingExcludesForcedOnlyLayouts(t *testing.T) {
	reg, err := NewRegistry([]Extractor{
		stubExtractor{"ranked", 0.1},
		stubExtractor{"forced_only", 9},
	}, []string{"ranked"})
	if err != nil {
		t.Fatal(err)
	}
	res, _ := reg.Parse("x", "")
	if res.FormatID != "ranked" {
		t.Fatalf("auto picked %q", res.FormatID)
	}
	res, err = reg.Parse("x", "forced_only")
	if err != nil || res.FormatID != "forced_only" {
		t.Fatalf("forced = %q, %v", res.FormatID, err)
	}
}

func TestNewRegistryRejectsBadInput(t *testing.T) {
	a, b := stubExtractor{"a", 0}, stubExtractor{"b", 0}
	tests := []struct {
		name     string
		dispatch []Extractor
		ranking  []string
		unknown  bool
	}{
		{"duplicate dispatch id", []Extractor{a, a}, []string{"a"}, false},
		{"empty ranking", []Extractor{a, b}, nil, false},
		{"ranking id not dispatchable", []Extractor{a}, []string{"a", "b"}, true},
		{"duplicate ranking id", []Extractor{a, b}, []string{"a", "a"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.dispatch, tt.ranking)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrUnknownFormat); got != tt.unknown {
				t.Fatalf("errors.Is(ErrUnknownFormat) = %v for %v", got, err)
			}
		})
	}
}

func TestDefaultRegistryShape(t *testing.T) {
	reg := Default()
	if got := len(reg.Dispatch()); got != 11 {
		t.Fatalf("dispatch has %d extractors, want 11", got)
	}
	var ranking []string
	for _, e := range reg.Ranking() {
		ranking = append(ranking, e.ID())
	}
	if !reflect.DeepEqual(ranking, DefaultRanking) {
		t.Fatalf("ranking = %v", ranking)
	}
	for _, id := range []string{"factura_afecta", "factura_electronica_moderna", "factura_simple", "factura_retail", "liquidacion_tipo3"} {
		if _, ok := reg.ByID(id); !ok {
			t.Errorf("%s should be dispatchable", id)
		}
	}

	opts := reg.Options()
	if opts[0].ID != "auto" || opts[0].Label != "Auto (detectar)" {
		t.Fatalf("first option = %+v", opts[0])
	}
	if len(opts) != 12 {
		t.Fatalf("got %d options, want 12", len(opts))
	}
	seen := map[string]bool{}
	for _, o := range opts {
		if o.Label == "" || seen[o.ID] {
			t.Fatalf("bad option %+v", o)
		}
		seen[o.ID] = true
	}

	// callers get copies
	reg.Dispatch()[0] = stubExtractor{"x", 0}
	if reg.Dispatch()[0].ID() == "x" {
		t.Fatal("Dispatch exposes internal slice")
	}
}
