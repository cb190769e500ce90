package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/boletas/constants"
	"github.com/joseph-ayodele/boletas/internal/common"
	"github.com/joseph-ayodele/boletas/internal/entity"
	"github.com/joseph-ayodele/boletas/internal/extract"
	"github.com/joseph-ayodele/boletas/internal/service"
)

// Parser is the part of service.Service the gRPC layer needs.
type Parser interface {
	ParseText(ctx context.Context, req service.TextRequest) (service.Outcome, error)
	ParseFile(ctx context.Context, req service.FileRequest) (service.Outcome, error)
	Options() []extract.Option
	Run(ctx context.Context, id uuid.UUID) (*entity.ParseRun, error)
	Runs(ctx context.Context, filter entity.ParseRunFilter) ([]entity.ParseRun, error)
}

type ExtractionService struct {
	parser Parser
	logger *slog.Logger
}

var _ ExtractionServer = (*ExtractionService)(nil)

func NewExtractionService(parser Parser, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{parser: parser, logger: logger}
}

type extractResponse struct {
	RunID       string          `json:"run_id"`
	SourceName  string          `json:"source_name"`
	ContentHash string          `json:"content_hash,omitempty"`
	Result      json.RawMessage `json:"result"`
}

// Extract parses either inline text or a file path readable by the server.
// Request keys: text | path, format, source_name.
func (s *ExtractionService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text := stringField(req, "text")
	path := strings.TrimSpace(stringField(req, "path"))
	switch {
	case text == "" && path == "":
		s.logger.Error("extract request missing text and path")
		return nil, status.Error(codes.InvalidArgument, "text or path is required")
	case text != "" && path != "":
		return nil, status.Error(codes.InvalidArgument, "text and path are mutually exclusive")
	}

	format := stringField(req, "format")
	if id, ok := constants.CanonicalizeFormat(format); ok {
		format = id
	}

	var (
		out service.Outcome
		err error
	)
	if path != "" {
		s.logger.Info("extracting file", "path", path, "format", format)
		out, err = s.parser.ParseFile(ctx, service.FileRequest{Path: path, Format: format})
	} else {
		s.logger.Info("extracting text", "bytes", len(text), "format", format)
		out, err = s.parser.ParseText(ctx, service.TextRequest{
			SourceName: stringField(req, "source_name"),
			Text:       text,
			Format:     format,
		})
	}
	if err != nil {
		s.logger.Warn("extract failed", "path", path, "format", format, "error", err)
		return nil, toStatus(s.logger, err)
	}

	return toStruct(extractResponse{
		RunID:       out.RunID.String(),
		SourceName:  out.SourceName,
		ContentHash: out.ContentHash,
		Result:      out.JSON,
	})
}

// ListFormats returns the format picker options, "auto" first.
func (s *ExtractionService) ListFormats(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(map[string]any{"formats": s.parser.Options()})
}

func (s *ExtractionService) GetRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw := strings.TrimSpace(stringField(req, "id"))
	if raw == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Error("invalid run id", "id", raw, "error", err)
		return nil, common.InvalidArgumentErrorf("id %q is not a UUID", raw)
	}
	run, err := s.parser.Run(ctx, id)
	if err != nil {
		return nil, toStatus(s.logger, err)
	}
	run.Text = ""
	return toStruct(run)
}

// ListRuns lists stored runs, newest first. Request keys: format_id,
// status, content_hash, limit.
func (s *ExtractionService) ListRuns(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter := entity.ParseRunFilter{
		FormatID:    stringField(req, "format_id"),
		Status:      constants.RunStatus(strings.ToUpper(stringField(req, "status"))),
		ContentHash: stringField(req, "content_hash"),
	}
	if v, ok := req.GetFields()["limit"]; ok {
		n := v.GetNumberValue()
		if n < 0 {
			return nil, common.InvalidArgumentErrorf("limit must not be negative, got %v", n)
		}
		filter.Limit = int(n)
	}
	runs, err := s.parser.Runs(ctx, filter)
	if err != nil {
		return nil, toStatus(s.logger, err)
	}
	for i := range runs {
		runs[i].Text = ""
	}
	s.logger.Info("runs listed", "count", len(runs))
	return toStruct(map[string]any{"runs": runs})
}

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

// toStruct converts v through its JSON form.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "decode response: %v", err)
	}
	st, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return st, nil
}
