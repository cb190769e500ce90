package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/boletas/internal/service"
)

var parseFormat string

var parseCmd = &cobra.Command{
	Use:   "parse FILE...",
	Short: "Parse PDF or TXT documents and print the result as JSON",
	Long: `Parses each file and prints one JSON object per file. Use "-" to read
plain text from stdin. --format forces a layout (synonyms such as "boleta" or
"factura" are accepted); the default detects it.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "auto", "layout id or \"auto\"")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := canonicalFormat(parseFormat)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	failed := 0
	for _, arg := range args {
		var out service.Outcome
		if arg == "-" {
			text, rerr := io.ReadAll(cmd.InOrStdin())
			if rerr != nil {
				return fmt.Errorf("read stdin: %w", rerr)
			}
			out, err = a.svc.ParseText(ctx, service.TextRequest{SourceName: "stdin", Text: string(text), Format: format})
		} else {
			out, err = a.svc.ParseFile(ctx, service.FileRequest{Path: arg, Format: format})
		}
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", arg, err)
			failed++
			continue
		}
		if err := printOutcome(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d documents failed", failed, len(args))
	}
	return nil
}

func printOutcome(w io.Writer, out service.Outcome) error {
	doc, err := json.Marshal(struct {
		RunID      string          `json:"run_id"`
		SourceName string          `json:"source_name"`
		Result     json.RawMessage `json:"result"`
	}{out.RunID.String(), out.SourceName, out.JSON})
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the layouts that can be forced with --format",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		registry, err := buildRegistry(cfg, logger)
		if err != nil {
			return err
		}
		ranked := map[string]bool{}
		for _, e := range registry.Ranking() {
			ranked[e.ID()] = true
		}
		w := cmd.OutOrStdout()
		for _, o := range registry.Options() {
			mark := " "
			if ranked[o.ID] {
				mark = "*"
			}
			fmt.Fprintf(w, "%s %-22s %s\n", mark, o.ID, o.Label)
		}
		if !quiet {
			fmt.Fprintln(os.Stderr, "* takes part in automatic detection")
		}
		return nil
	},
}
