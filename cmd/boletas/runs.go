package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/entity"
	"github.com/joseph-ayodele/boletas/internal/export"
)

var (
	runsFilter     entity.ParseRunFilter
	runsStatus     string
	runsExportOut  string
	runsExportDefs export.Defaults
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect and export recorded parse runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List parse runs, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()
		runsFilter.Status = constants.RunStatus(runsStatus)
		runs, err := a.svc.Runs(cmd.Context(), runsFilter)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tFORMAT\tCONFIDENCE\tSOURCE")
		for _, r := range runs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.2f\t%s\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Status, r.FormatID, r.Confidence, r.SourceName)
		}
		return tw.Flush()
	},
}

var runsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Print one parse run as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()
		run, err := a.svc.Run(cmd.Context(), id)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

var runsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the parsed runs matching the filter to a Rendicion XLSX",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), true)
		if err != nil {
			return err
		}
		defer a.Close()
		filter := runsFilter
		filter.Status = constants.RunStatusParsed
		runs, err := a.svc.Runs(cmd.Context(), filter)
		if err != nil {
			return err
		}
		rows := make([]export.Row, 0, len(runs))
		for _, r := range runs {
			row, err := export.RowFromRun(r, runsExportDefs)
			if err != nil {
				a.logger.Warn("skipping run", "run_id", r.ID, "error", err)
				continue
			}
			rows = append(rows, row)
		}

		f, err := os.Create(runsExportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", runsExportOut, err)
		}
		if err := export.NewService(a.logger).WriteXLSX(f, rows); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		abs, _ := filepath.Abs(runsExportOut)
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(rows), abs)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{runsListCmd, runsExportCmd} {
		c.Flags().StringVar(&runsFilter.FormatID, "format-id", "", "only runs of this layout")
		c.Flags().StringVar(&runsFilter.ContentHash, "hash", "", "only runs of this content hash")
		c.Flags().IntVarP(&runsFilter.Limit, "limit", "n", 50, "maximum number of runs")
	}
	runsListCmd.Flags().StringVar(&runsStatus, "status", "", "PARSED, NO_TEXT or FAILED")
	runsExportCmd.Flags().StringVarP(&runsExportOut, "out", "o", "rendicion.xlsx", "output XLSX path")
	addDefaultsFlags(runsExportCmd, &runsExportDefs)

	runsCmd.AddCommand(runsListCmd, runsGetCmd, runsExportCmd)
}
