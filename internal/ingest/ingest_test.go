package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.pdf"), "one")
	write(t, filepath.Join(root, "b.TXT"), "two")
	write(t, filepath.Join(root, "sub", "c.pdf"), "one")
	write(t, filepath.Join(root, "notes.docx"), "ignored")
	write(t, filepath.Join(root, ".hidden.pdf"), "hidden")
	write(t, filepath.Join(root, ".cache", "d.pdf"), "hidden dir")

	docs, stats, err := NewScanner(true, nil).Scan(context.Background(), root)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d docs: %+v", len(docs), docs)
	}
	if stats.Matched != 3 || stats.Succeeded != 3 || stats.Deduplicated != 1 || stats.Failed != 0 {
		t.Fatalf("stats = %+v", stats)
	}
	byName := map[string]Document{}
	for _, d := range docs {
		byName[filepath.Base(d.Path)] = d
	}
	if byName["b.TXT"].Ext != "txt" || byName["b.TXT"].Size != 3 {
		t.Fatalf("b.TXT = %+v", byName["b.TXT"])
	}
	if byName["a.pdf"].HashHex != byName["c.pdf"].HashHex || !byName["c.pdf"].Deduplicated || byName["a.pdf"].Deduplicated {
		t.Fatalf("dedupe wrong: %+v", docs)
	}
	if byName["a.pdf"].HashHex != HashBytes([]byte("one")) {
		t.Fatalf("hash mismatch")
	}

	all, stats, err := NewScanner(false, nil).Scan(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 || stats.Matched != 5 {
		t.Fatalf("without skipping hidden got %d docs, stats %+v", len(all), stats)
	}
}

func TestScanErrors(t *testing.T) {
	if _, _, err := NewScanner(true, nil).Scan(context.Background(), " "); err == nil {
		t.Fatal("blank root should fail")
	}
	if _, _, err := NewScanner(true, nil).Scan(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("missing root should fail")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewScanner(true, nil).Scan(ctx, t.TempDir()); err == nil {
		t.Fatal("cancelled scan should fail")
	}
}

func TestAllowedExtAndHidden(t *testing.T) {
	for ext, want := range map[string]bool{".pdf": true, "PDF": true, ".txt": true, ".png": false, "": false} {
		if AllowedExt(ext) != want {
			t.Errorf("AllowedExt(%q) = %v", ext, !want)
		}
	}
	if !IsHidden("/x/.git") || IsHidden("/x/git") || IsHidden(".") {
		t.Fatal("IsHidden misclassifies")
	}
}

func TestWatcherEmitsNewFiles(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "existing.pdf"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true})
	if err != nil {
		t.Fatalf("StartWatcher: %v", err)
	}

	want := map[string]bool{
		filepath.Join(root, "existing.pdf"): false,
		filepath.Join(root, "new.txt"):      false,
	}
	write(t, filepath.Join(root, "skip.docx"), "x")
	write(t, filepath.Join(root, "new.txt"), "x")

	deadline := time.After(5 * time.Second)
	for remaining := len(want); remaining > 0; {
		select {
		case p := <-events:
			seen, ok := want[p]
			if !ok {
				t.Fatalf("unexpected event %q", p)
			}
			if !seen {
				want[p] = true
				remaining--
			}
		case <-deadline:
			t.Fatalf("timed out, seen %v", want)
		}
	}

	cancel()
	for range events {
	}
}

func TestWatcherNeedsRoots(t *testing.T) {
	if _, _, err := StartWatcher(context.Background(), WatchConfig{}); err == nil {
		t.Fatal("expected error")
	}
}
