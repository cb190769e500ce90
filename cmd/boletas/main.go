package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/common"
	"github.com/joseph-ayodele/boletas/internal/extract"
	"github.com/joseph-ayodele/boletas/internal/ocr"
	repo "github.com/joseph-ayodele/boletas/internal/repository"
	"github.com/joseph-ayodele/boletas/internal/service"
)

var (
	configPath string
	dbURL      string
	noStore    bool
	quiet      bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "boletas",
	Short: "Extract fields from Chilean fiscal and payroll documents",
	Long: `boletas reads the first page of boletas de honorarios, facturas, notas de
crédito and liquidaciones de sueldo, detects the layout and extracts issuer,
recipient, date, number and amounts.`,
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("BOLETAS_CONFIG"), "YAML config file overlaid on the environment")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "database URL (overrides DB_URL)")
	rootCmd.PersistentFlags().BoolVar(&noStore, "no-store", false, "do not record parse runs")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log debug output")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(formatsCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(dbHealthCmd)
	rootCmd.AddCommand(textCmd)
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg      *common.Config
	logger   *slog.Logger
	registry *extract.Registry
	svc      *service.Service
	db       *repo.DB
}

func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}

// loadConfig reads the configuration and installs the logger. Logs go to
// stderr so command output on stdout stays machine readable.
func loadConfig() (*common.Config, *slog.Logger, error) {
	cfg, err := common.LoadConfigFile(configPath)
	if err != nil {
		return nil, nil, err
	}
	if dbURL != "" {
		cfg.Database.DSN = dbURL
	}
	switch {
	case verbose:
		cfg.Log.Level = "debug"
	case quiet:
		cfg.Log.Level = "error"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := common.NewLogger(cfg.Log, os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func buildRegistry(cfg *common.Config, logger *slog.Logger) (*extract.Registry, error) {
	if len(cfg.Registry.Ranking) == 0 {
		return extract.Default(extract.WithLogger(logger)), nil
	}
	r, err := extract.NewRegistry(extract.All(), cfg.Registry.Ranking, extract.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("registry ranking: %w", err)
	}
	return r, nil
}

// newApp builds the service. needStore makes --no-store an error for
// commands that read stored runs.
func newApp(ctx context.Context, needStore bool) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: logger}
	if a.registry, err = buildRegistry(cfg, logger); err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithTextExtractor(extract.NewOCRAdapter(ocr.NewExtractor(ocr.Config{
			Pdftotext:    cfg.Text.Pdftotext,
			MaxFileBytes: cfg.Text.MaxFileBytes,
		}, logger))),
		service.WithLimits(service.Limits{MinTextChars: cfg.Text.MinTextChars, MaxTextBytes: cfg.Text.MaxTextBytes}),
	}
	if needStore && noStore {
		return nil, fmt.Errorf("this command reads stored runs and cannot run with --no-store")
	}
	if !noStore {
		a.db, err = repo.Open(ctx, repo.Config{
			DSN:              cfg.Database.DSN,
			MaxConns:         cfg.Database.MaxConns,
			MinConns:         cfg.Database.MinConns,
			MaxConnLifetime:  cfg.Database.MaxConnLifetime,
			MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
			DialTimeout:      cfg.Database.DialTimeout,
			StatementTimeout: cfg.Database.StatementTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		if err := a.db.Migrate(ctx); err != nil {
			a.db.Close()
			return nil, err
		}
		opts = append(opts, service.WithRuns(repo.NewParseRunRepository(a.db, logger)))
	}

	if a.svc, err = service.New(a.registry, logger, opts...); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// canonicalFormat resolves a --format flag value, accepting synonyms.
func canonicalFormat(flag string) (string, error) {
	id, ok := constants.CanonicalizeFormat(flag)
	if !ok {
		return "", &extract.UnknownFormatError{ID: id}
	}
	return id, nil
}
