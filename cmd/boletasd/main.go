package main

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/joseph-ayodele/boletas/internal/common"
	"github.com/joseph-ayodele/boletas/internal/extract"
	"github.com/joseph-ayodele/boletas/internal/ocr"
	repo "github.com/joseph-ayodele/boletas/internal/repository"
	"github.com/joseph-ayodele/boletas/internal/server"
	"github.com/joseph-ayodele/boletas/internal/service"
)

func main() {
	cfg, err := common.LoadConfigFile(os.Getenv("BOLETAS_CONFIG"))
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger := common.NewLogger(cfg.Log, os.Stdout)
	slog.SetDefault(logger)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	addr := cfg.Server.GRPCAddr
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := repo.Open(ctx, repo.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.HealthCheck(ctx, cfg.Database.DialTimeout); err != nil {
		logger.Error("failed to ping database", "error", err)
		os.Exit(1)
	}
	if err := db.Migrate(ctx); err != nil {
		logger.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	registry := extract.Default(extract.WithLogger(logger))
	if len(cfg.Registry.Ranking) > 0 {
		registry, err = extract.NewRegistry(extract.All(), cfg.Registry.Ranking, extract.WithLogger(logger))
		if err != nil {
			logger.Error("invalid registry ranking", "ranking", cfg.Registry.Ranking, "error", err)
			os.Exit(1)
		}
	}

	extractor := ocr.NewExtractor(ocr.Config{
		Pdftotext:    cfg.Text.Pdftotext,
		MaxFileBytes: cfg.Text.MaxFileBytes,
	}, logger)
	svc, err := service.New(registry, logger,
		service.WithRuns(repo.NewParseRunRepository(db, logger)),
		service.WithTextExtractor(extract.NewOCRAdapter(extractor)),
		service.WithLimits(service.Limits{MinTextChars: cfg.Text.MinTextChars, MaxTextBytes: cfg.Text.MaxTextBytes}),
	)
	if err != nil {
		logger.Error("failed to build service", "error", err)
		os.Exit(1)
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		logger.Error("failed to listen on address", "addr", addr, "error", err)
		os.Exit(1)
	}
	grpcServer := grpc.NewServer(grpc.UnaryInterceptor(server.UnaryRequestLogger(logger)))
	server.RegisterExtractionServer(grpcServer, server.NewExtractionService(svc, logger))

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(server.ExtractionServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	logger.Info("boletasd listening", "addr", addr, "formats", len(registry.Dispatch()), "ranked", len(registry.Ranking()))
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			logger.Error("gRPC serve error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	healthServer.Shutdown()
	grpcServer.GracefulStop()
}
