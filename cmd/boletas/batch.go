package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/boletas/internal/async"
	"github.com/joseph-ayodele/boletas/internal/export"
	"github.com/joseph-ayodele/boletas/internal/ingest"
	"github.com/joseph-ayodele/boletas/internal/service"
)

var (
	batchOut      string
	batchFormat   string
	batchWorkers  int
	batchProgress bool
	batchTimeout  time.Duration
	batchDefaults export.Defaults
)

var batchCmd = &cobra.Command{
	Use:   "batch DIR",
	Short: "Parse every PDF/TXT under DIR and write a Rendicion XLSX",
	Long: `Walks DIR recursively, skipping hidden entries and files whose content
repeats an earlier one, parses each document with a pool of workers and writes
one row per parsed document to the report.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchOut, "out", "o", "", "output XLSX path (default: rendicion.xlsx next to DIR)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "auto", "layout id or \"auto\" for every document")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "parallel workers (default: BATCH_WORKERS)")
	batchCmd.Flags().BoolVarP(&batchProgress, "progress", "p", false, "show progress bar")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", time.Minute, "per-document timeout")
	addDefaultsFlags(batchCmd, &batchDefaults)
}

// addDefaultsFlags registers the hand-entered report columns.
func addDefaultsFlags(cmd *cobra.Command, d *export.Defaults) {
	cmd.Flags().StringVar(&d.Cuenta, "cuenta", "", "Cuenta column")
	cmd.Flags().StringVar(&d.Item, "item", "", "Item column")
	cmd.Flags().StringVar(&d.FuenteFinanciamiento, "fuente", "", "Fuente de financiamiento column")
	cmd.Flags().StringVar(&d.MontoARendir, "monto-a-rendir", "", "Monto a rendir column")
	cmd.Flags().StringVar(&d.ValorHora, "valor-hora", "", "Valor hora column")
	cmd.Flags().StringVar(&d.HorasRendidasMes, "horas", "", "Horas rendidas/mes column")
	cmd.Flags().StringVar(&d.FormaPago, "forma-pago", "", "Forma de pago column")
	cmd.Flags().StringVar(&d.FechaPago, "fecha-pago", "", "Fecha de pago column")
}

type batchResult struct {
	path string
	row  export.Row
	err  error
}

func runBatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	format, err := canonicalFormat(batchFormat)
	if err != nil {
		return err
	}
	if batchOut == "" {
		batchOut = filepath.Join(filepath.Dir(filepath.Clean(dir)), "rendicion.xlsx")
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()
	logger := a.logger

	docs, stats, err := ingest.NewScanner(true, logger).Scan(ctx, dir)
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}
	logger.Info("scan complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed)

	var todo []ingest.Document
	for _, d := range docs {
		if d.Err == "" && !d.Deduplicated {
			todo = append(todo, d)
		}
	}

	var bar *progressbar.ProgressBar
	if batchProgress && !quiet {
		bar = progressbar.NewOptions(len(todo),
			progressbar.OptionSetDescription("Parsing documents"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	var (
		mu      sync.Mutex
		results []batchResult
	)
	handle := func(ctx context.Context, job async.Job) error {
		out, err := a.svc.ParseFile(ctx, service.FileRequest{Path: job.Path, Format: job.Format})
		res := batchResult{path: job.Path, err: err}
		if err == nil {
			res.row = export.RowFromResult(out.Result, batchDefaults)
		}
		mu.Lock()
		results = append(results, res)
		mu.Unlock()
		return err
	}
	workers := batchWorkers
	if workers <= 0 {
		workers = a.cfg.Batch.Workers
	}
	queue := async.NewWorkerQueue(handle, logger,
		async.WithWorkers(workers),
		async.WithQueueSize(a.cfg.Batch.QueueSize),
		async.WithProcessTimeout(batchTimeout),
		async.WithResultHook(func(async.Job, error) {
			if bar != nil {
				_ = bar.Add(1)
			}
		}),
	)

	traceID := uuid.NewString()
	for _, d := range todo {
		job := async.Job{Path: d.Path, HashHex: d.HashHex, Format: format, TraceID: traceID}
		if err := queue.Enqueue(ctx, job); err != nil {
			_ = queue.Shutdown(context.Background())
			return fmt.Errorf("enqueue %s: %w", d.Path, err)
		}
	}
	if err := queue.Shutdown(ctx); err != nil {
		return fmt.Errorf("wait for workers: %w", err)
	}
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(os.Stderr)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })
	var rows []export.Row
	failures := 0
	for _, r := range results {
		if r.err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.path, r.err)
			failures++
			continue
		}
		rows = append(rows, r.row)
	}

	f, err := os.Create(batchOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", batchOut, err)
	}
	if err := export.NewService(logger).WriteXLSX(f, rows); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", batchOut, err)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Batch processing complete!\n")
	fmt.Fprintf(w, "- Documents found: %d (%d duplicates skipped)\n", stats.Matched, stats.Deduplicated)
	fmt.Fprintf(w, "- Parsed: %d\n", len(rows))
	fmt.Fprintf(w, "- Failures: %d\n", failures)
	fmt.Fprintf(w, "- Output: %s\n", batchOut)
	return nil
}
