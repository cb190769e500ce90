package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/entity"
	"github.com/joseph-ayodele/boletas/internal/ocr"
)

var dbHealthCmd = &cobra.Command{
	Use:   "dbhealth",
	Short: "Ping the database and count stored runs per status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.db.HealthCheck(ctx, time.Second); err != nil {
			return fmt.Errorf("DB health: FAIL (%w)", err)
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "DB health: OK (%s)\n", a.db.Dialect)
		for _, st := range []constants.RunStatus{constants.RunStatusParsed, constants.RunStatusNoText, constants.RunStatusFailed} {
			runs, err := a.svc.Runs(ctx, entity.ParseRunFilter{Status: st, Limit: 500})
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "- %-8s %d\n", st, len(runs))
		}
		return nil
	},
}

var textCmd = &cobra.Command{
	Use:   "text FILE",
	Short: "Print the first-page text the parsers see",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		e := ocr.NewExtractor(ocr.Config{Pdftotext: cfg.Text.Pdftotext, MaxFileBytes: cfg.Text.MaxFileBytes}, logger)
		res, err := e.Extract(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			logger.Warn("text warning", "path", args[0], "warning", w)
		}
		logger.Info("text extracted", "source_type", res.SourceType, "method", res.Method, "pages", res.Pages, "duration_ms", res.Duration.Milliseconds())
		_, err = fmt.Fprint(cmd.OutOrStdout(), res.Text)
		return err
	},
}
