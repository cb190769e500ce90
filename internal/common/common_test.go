package common

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_URL", "")
	t.Setenv("REGISTRY_RANKING", "")
	cfg := LoadConfig()
	if cfg.Database.DSN != "file:boletas.db" {
		t.Fatalf("DSN = %q", cfg.Database.DSN)
	}
	if cfg.Text.MinTextChars != 10 || cfg.Text.MaxTextBytes != 1<<20 {
		t.Fatalf("text = %+v", cfg.Text)
	}
	if cfg.Registry.Ranking != nil {
		t.Fatalf("Ranking = %v", cfg.Registry.Ranking)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("REGISTRY_RANKING", " sii_clasico, ,factura_sii ")
	t.Setenv("MIN_TEXT_CHARS", "25")
	t.Setenv("DB_DIAL_TIMEOUT", "notaduration")
	cfg := LoadConfig()
	if len(cfg.Registry.Ranking) != 2 || cfg.Registry.Ranking[1] != "factura_sii" {
		t.Fatalf("Ranking = %q", cfg.Registry.Ranking)
	}
	if cfg.Text.MinTextChars != 25 {
		t.Fatalf("MinTextChars = %d", cfg.Text.MinTextChars)
	}
	if cfg.Database.DialTimeout != 3*time.Second {
		t.Fatalf("bad duration should keep default, got %v", cfg.Database.DialTimeout)
	}
}

func TestLoadConfigFileOverlay(t *testing.T) {
	t.Setenv("GRPC_ADDR", ":9000")
	path := filepath.Join(t.TempDir(), "boletas.yaml")
	yml := "registry:\n  ranking: [liquidacion, liquidacion_tipo3]\ntext:\n  min_text_chars: 3\ndatabase:\n  dial_timeout: 10s\nlog:\n  format: json\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile: %v", err)
	}
	if got := cfg.Registry.Ranking; len(got) != 2 || got[1] != "liquidacion_tipo3" {
		t.Fatalf("Ranking = %v", got)
	}
	if cfg.Text.MinTextChars != 3 || cfg.Database.DialTimeout != 10*time.Second || cfg.Log.Format != "json" {
		t.Fatalf("overlay not applied: %+v", cfg)
	}
	if cfg.Server.GRPCAddr != ":9000" || cfg.Text.MaxTextBytes != 1<<20 {
		t.Fatalf("env values lost: %+v", cfg)
	}
}

func TestLoadConfigFileErrors(t *testing.T) {
	if _, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file: %v", err)
	}
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("text: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := LoadConfigFile(path)
	var appErr *AppError
	if !errors.As(err, &appErr) || appErr.Code != "CONFIG_ERROR" {
		t.Fatalf("bad yaml: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no dsn", func(c *Config) { c.Database.DSN = "" }},
		{"no addr", func(c *Config) { c.Server.GRPCAddr = "" }},
		{"negative min chars", func(c *Config) { c.Text.MinTextChars = -1 }},
		{"zero cap", func(c *Config) { c.Text.MaxTextBytes = 0 }},
		{"no workers", func(c *Config) { c.Batch.Workers = 0 }},
		{"log format", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := LoadConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("Validate = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestValidator(t *testing.T) {
	v := NewValidator().
		Field("source", "", Required).
		Field("format", "nope", OneOf("auto", "sii_clasico")).
		Field("name", "abcdef", MaxLength(3)).
		Field("id", "123", UUID)
	if len(v.Errors()) != 4 {
		t.Fatalf("got %d errors: %v", len(v.Errors()), v.Errors())
	}
	if err := v.Err(); !errors.Is(err, ErrValidation) {
		t.Fatalf("Err = %v", err)
	}
	if st, _ := status.FromError(ValidateAndReturnError(v)); st.Code() != codes.InvalidArgument {
		t.Fatalf("code = %v", st.Code())
	}

	ok := NewValidator().Field("format", "", OneOf("auto")).Field("source", "x.pdf", Required, MaxLength(10))
	if ok.Err() != nil {
		t.Fatalf("unexpected %v", ok.Err())
	}
}

func TestSanitizeForClient(t *testing.T) {
	if got := SanitizeForClient(nil, errors.New("insert run: database error: pq: relation missing")); got != "storage temporarily unavailable" {
		t.Fatalf("got %q", got)
	}
	if got := SanitizeForClient(nil, errors.New("open /secret/path")); got != "internal error" {
		t.Fatalf("got %q", got)
	}
	if SanitizeForClient(nil, nil) != "" {
		t.Fatal("nil error should map to empty")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LogConfig{Level: "debug", Format: "json"}, &buf)
	logger.Debug("parse.ok", "format_id", "sii_clasico")
	if !strings.Contains(buf.String(), `"format_id":"sii_clasico"`) {
		t.Fatalf("json output = %q", buf.String())
	}

	buf.Reset()
	logger = NewLogger(LogConfig{Level: "warn", Format: "text"}, &buf)
	logger.Info("dropped")
	logger.Warn("kept", "n", 1)
	out := buf.String()
	if strings.Contains(out, "dropped") || !strings.Contains(out, "msg=kept n=1") || strings.Contains(out, "time=") {
		t.Fatalf("text output = %q", out)
	}

	if ParseLevel("ERROR") != slog.LevelError || ParseLevel("bogus") != slog.LevelInfo {
		t.Error("ParseLevel")
	}
}

func TestErrorHelpers(t *testing.T) {
	if WrapError(nil, "store run") != nil {
		t.Fatal("WrapError(nil) should stay nil")
	}
	err := WrapError(ErrDatabase, "store run")
	if !errors.Is(err, ErrDatabase) || err.Error() != "store run: database error" {
		t.Fatalf("WrapError = %v", err)
	}

	st, ok := status.FromError(InvalidArgumentErrorf("limit must not be negative, got %v", -1))
	if !ok || st.Code() != codes.InvalidArgument || st.Message() != "limit must not be negative, got -1" {
		t.Fatalf("status = %v", st)
	}
}
