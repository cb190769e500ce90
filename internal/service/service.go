package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/common"
	"github.com/joseph-ayodele/boletas/internal/entity"
	"github.com/joseph-ayodele/boletas/internal/extract"
	"github.com/joseph-ayodele/boletas/internal/ingest"
	"github.com/joseph-ayodele/boletas/internal/repository"
)

// Service parses documents with the extractor registry and records every
// attempt as a parse run.
type Service struct {
	registry *extract.Registry
	text     extract.TextExtractor
	runs     repository.ParseRunRepository // nil disables persistence
	schema   *jsonschema.Schema
	limits   Limits
	logger   *slog.Logger
}

type Option func(*Service)

func WithRuns(runs repository.ParseRunRepository) Option {
	return func(s *Service) { s.runs = runs }
}

func WithTextExtractor(t extract.TextExtractor) Option {
	return func(s *Service) { s.text = t }
}

func WithLimits(l Limits) Option {
	return func(s *Service) { s.limits = l }
}

func New(registry *extract.Registry, logger *slog.Logger, opts ...Option) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{registry: registry, limits: DefaultLimits, logger: logger}
	for _, o := range opts {
		o(s)
	}
	var ids []string
	for _, e := range registry.Dispatch() {
		ids = append(ids, e.ID())
	}
	schema, err := extract.CompileSchema(extract.ResultSchema(ids))
	if err != nil {
		return nil, fmt.Errorf("result schema: %w", err)
	}
	s.schema = schema
	return s, nil
}

// TextRequest asks to parse text that is already in memory.
type TextRequest struct {
	SourceName string
	Text       string
	Format     string // "", "auto" or a registered format id
}

// FileRequest asks to parse a PDF or TXT file on disk.
type FileRequest struct {
	Path   string
	Format string
}

// Outcome is a parse result together with its stored run.
type Outcome struct {
	RunID       uuid.UUID
	SourceName  string
	ContentHash string
	Result      extract.Result
	JSON        []byte // schema-validated JSON of Result
}

// Options lists the formats callers may choose from, "auto" first.
func (s *Service) Options() []extract.Option {
	return s.registry.Options()
}

// ParseText validates the request, parses the text and stores the run.
func (s *Service) ParseText(ctx context.Context, req TextRequest) (Outcome, error) {
	req.SourceName = strings.TrimSpace(req.SourceName)
	if req.SourceName == "" {
		req.SourceName = "inline"
	}
	if err := s.checkFormat(req.Format); err != nil {
		return Outcome{}, err
	}
	if err := common.NewValidator().Field("source_name", req.SourceName, common.MaxLength(512)).Err(); err != nil {
		return Outcome{}, err
	}
	run := &entity.ParseRun{
		SourceName:  req.SourceName,
		SourceKind:  "INLINE",
		ContentHash: ingest.HashBytes([]byte(req.Text)),
		Forced:      forcedID(req.Format),
	}
	return s.parse(ctx, run, req.Text, req.Format)
}

// ParseFile extracts the first page of the file and parses it.
func (s *Service) ParseFile(ctx context.Context, req FileRequest) (Outcome, error) {
	if s.text == nil {
		return Outcome{}, errors.New("no text extractor configured")
	}
	if err := common.NewValidator().Field("path", req.Path, common.Required).Err(); err != nil {
		return Outcome{}, err
	}
	if err := s.checkFormat(req.Format); err != nil {
		return Outcome{}, err
	}
	hash, _, err := ingest.HashFile(req.Path)
	if err != nil {
		return Outcome{}, fmt.Errorf("hash %s: %w", req.Path, err)
	}
	run := &entity.ParseRun{
		SourceName:  filepath.Base(req.Path),
		SourceKind:  constants.SourceKindForExt(filepath.Ext(req.Path)),
		ContentHash: hash,
		Forced:      forcedID(req.Format),
	}

	tr, err := s.text.Extract(ctx, req.Path)
	if err != nil {
		s.logger.Error("parse.text.failed", "path", req.Path, "err", err)
		run.Status, run.ErrorMessage = constants.RunStatusFailed, err.Error()
		s.storeRejected(ctx, run)
		return Outcome{RunID: run.ID, SourceName: run.SourceName, ContentHash: hash}, fmt.Errorf("extract text: %w", err)
	}
	for _, w := range tr.Warnings {
		s.logger.Debug("parse.text.warning", "path", req.Path, "warning", w)
	}
	return s.parse(ctx, run, tr.Text, req.Format)
}

func (s *Service) parse(ctx context.Context, run *entity.ParseRun, text, format string) (Outcome, error) {
	start := time.Now()
	out := Outcome{SourceName: run.SourceName, ContentHash: run.ContentHash}

	if err := s.limits.CheckText(text, utf8.RuneCountInString(strings.TrimSpace(text))); err != nil {
		s.logger.Warn("parse.rejected", "source", run.SourceName, "err", err)
		if errors.Is(err, ErrNoText) {
			run.Status, run.ErrorMessage = constants.RunStatusNoText, err.Error()
			s.storeRejected(ctx, run)
			out.RunID = run.ID
		}
		return out, err
	}

	res, err := s.registry.Parse(text, format)
	if err != nil {
		return out, err
	}
	data, err := extract.ValidateResult(s.schema, res)
	if err != nil {
		s.logger.Error("parse.schema.failed", "format_id", res.FormatID, "err", err)
		return out, common.NewAppError("SCHEMA_ERROR", "result failed validation", errors.Join(common.ErrValidation, err))
	}
	fields, err := json.Marshal(res.Fields)
	if err != nil {
		return out, fmt.Errorf("marshal fields: %w", err)
	}

	run.FormatID, run.Confidence = res.FormatID, res.Confidence
	run.Status, run.Fields, run.Text = constants.RunStatusParsed, fields, text
	if err := s.store(ctx, run); err != nil {
		return out, err
	}

	s.logger.Info("parse.ok",
		"run_id", run.ID,
		"source", run.SourceName,
		"format_id", res.FormatID,
		"confidence", res.Confidence,
		"forced", run.Forced != "",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	out.RunID, out.Result, out.JSON = run.ID, res, data
	return out, nil
}

// checkFormat fails fast on a forced id the registry cannot dispatch.
func (s *Service) checkFormat(format string) error {
	id := forcedID(format)
	if id == "" {
		return nil
	}
	if _, ok := s.registry.ByID(id); !ok {
		return &extract.UnknownFormatError{ID: id}
	}
	return nil
}

func forcedID(format string) string {
	format = strings.TrimSpace(format)
	if format == constants.AutoFormat {
		return ""
	}
	return format
}

// store persists run when a repository is configured, assigning an id
// either way.
func (s *Service) store(ctx context.Context, run *entity.ParseRun) error {
	if s.runs == nil {
		if run.ID == uuid.Nil {
			run.ID = uuid.New()
		}
		return nil
	}
	return common.WrapError(s.runs.Create(ctx, run), "store run")
}

// storeRejected records a run that did not produce a result. The caller
// reports the parse error, so a store failure is only logged.
func (s *Service) storeRejected(ctx context.Context, run *entity.ParseRun) {
	if err := s.store(ctx, run); err != nil {
		s.logger.Warn("parse.store.failed", "source", run.SourceName, "status", run.Status, "err", err)
	}
}

// Run returns a stored parse run.
func (s *Service) Run(ctx context.Context, id uuid.UUID) (*entity.ParseRun, error) {
	if s.runs == nil {
		return nil, common.NewAppError("NOT_FOUND", "run storage disabled", common.ErrNotFound)
	}
	return s.runs.Get(ctx, id)
}

// Runs lists stored parse runs, newest first.
func (s *Service) Runs(ctx context.Context, filter entity.ParseRunFilter) ([]entity.ParseRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.List(ctx, filter)
}
