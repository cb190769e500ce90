package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/boletas/internal/ingest"
	"github.com/joseph-ayodele/boletas/internal/service"
)

var (
	watchFormat   string
	watchInitial  bool
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR...",
	Short: "Parse documents as they appear under the given directories",
	Long: `Watches the directories recursively and parses each PDF/TXT that is
created or rewritten, printing one line per document. Stops on interrupt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := canonicalFormat(watchFormat)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		a, err := newApp(ctx, false)
		if err != nil {
			return err
		}
		defer a.Close()

		paths, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Roots:       args,
			InitialScan: watchInitial,
			Debounce:    watchDebounce,
			Logger:      a.logger,
		})
		if err != nil {
			return err
		}
		a.logger.Info("watching", "roots", args)

		w := cmd.OutOrStdout()
		for {
			select {
			case p, ok := <-paths:
				if !ok {
					return nil
				}
				out, err := a.svc.ParseFile(ctx, service.FileRequest{Path: p, Format: format})
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", p, err)
					continue
				}
				total := "-"
				if t := out.Result.Fields.TotalAmount; t != nil {
					total = fmt.Sprintf("%.0f", *t)
				}
				fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", p, out.Result.FormatID, out.Result.Confidence, total, out.RunID)
			case err, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				a.logger.Warn("watch error", "error", err)
			}
		}
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "auto", "layout id or \"auto\"")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "also parse files already present")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "coalesce bursts of writes")
}
