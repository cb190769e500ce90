package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type fakeRunner struct {
	out   string
	err   error
	calls [][]string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, []byte("boom"), f.err
	}
	return []byte(f.out), nil, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestExtractPDFKeepsFirstPage(t *testing.T) {
	path := writeFile(t, "doc.pdf", "%PDF-1.4")
	r := &fakeRunner{out: "BOLETA DE HONORARIOS\nTotal\x00 28.000\n\fpage two\n\f"}
	e := NewExtractor(Config{Pdftotext: "/usr/bin/pdftotext"}, nil, WithRunner(r))

	res, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "BOLETA DE HONORARIOS\nTotal 28.000\n" {
		t.Fatalf("Text = %q", res.Text)
	}
	if res.Pages != 2 || res.SourceType != "PDF" || res.Method != "pdf-text" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("Warnings = %v", res.Warnings)
	}
	want := []string{"/usr/bin/pdftotext", "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-"}
	if len(r.calls) != 1 || !reflect.DeepEqual(r.calls[0], want) {
		t.Fatalf("calls = %v", r.calls)
	}
}

func TestExtractPDFRunnerFailure(t *testing.T) {
	path := writeFile(t, "doc.pdf", "%PDF-1.4")
	sentinel := errors.New("exit status 1")
	e := NewExtractor(Config{}, nil, WithRunner(&fakeRunner{err: sentinel}))
	res, err := e.Extract(context.Background(), path)
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v", err)
	}
	if len(res.Warnings) == 0 || res.Warnings[0] != "boom" {
		t.Fatalf("Warnings = %v", res.Warnings)
	}
}

func TestExtractPDFWithoutTextLayer(t *testing.T) {
	path := writeFile(t, "scan.pdf", "%PDF-1.4")
	e := NewExtractor(Config{}, nil, WithRunner(&fakeRunner{out: "  \n\f"}))
	res, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0] != "pdf has no text layer" {
		t.Fatalf("Warnings = %v", res.Warnings)
	}
}

func TestExtractPlainText(t *testing.T) {
	path := writeFile(t, "doc.TXT", "Monto Total a Pagar\n45.000")
	r := &fakeRunner{}
	e := NewExtractor(Config{}, nil, WithRunner(r))
	res, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Text != "Monto Total a Pagar\n45.000" || res.Method != "plain" || res.SourceType != "TXT" {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(r.calls) != 0 {
		t.Fatal("plain text must not shell out")
	}
}

func TestExtractRejects(t *testing.T) {
	e := NewExtractor(Config{MaxFileBytes: 4}, nil, WithRunner(&fakeRunner{}))
	if _, err := e.Extract(context.Background(), writeFile(t, "a.docx", "x")); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("docx: err = %v", err)
	}
	if _, err := e.Extract(context.Background(), writeFile(t, "big.txt", "12345")); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("big: err = %v", err)
	}
	if _, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing: err = %v", err)
	}
}

func TestExtractPDFToolMissing(t *testing.T) {
	e := NewExtractor(Config{Pdftotext: "pdftotext-not-installed-here"}, nil)
	_, err := e.Extract(context.Background(), writeFile(t, "a.pdf", "%PDF-1.4"))
	if !errors.Is(err, ErrToolMissing) {
		t.Fatalf("err = %v, want ErrToolMissing", err)
	}
}

func TestRunnerHelpers(t *testing.T) {
	if got := string(tail([]byte("abcdef"), 3)); got != "def" {
		t.Errorf("tail = %q", got)
	}
	if got := string(tail([]byte("ab"), 3)); got != "ab" {
		t.Errorf("tail short = %q", got)
	}
	if got := lastArg([]string{"-layout", "/tmp/a.pdf", "-"}); got != "/tmp/a.pdf" {
		t.Errorf("lastArg = %q", got)
	}
}
