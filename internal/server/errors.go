package server

import (
	"errors"
	"io/fs"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/boletas/internal/common"
	"github.com/joseph-ayodele/boletas/internal/extract"
	"github.com/joseph-ayodele/boletas/internal/ocr"
	"github.com/joseph-ayodele/boletas/internal/service"
)

// toStatus maps a service error onto a gRPC status. Caller mistakes keep
// their message; everything else is sanitized.
func toStatus(logger *slog.Logger, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var appErr *common.AppError
	if errors.As(err, &appErr) && appErr.Code == "SCHEMA_ERROR" {
		return common.InternalError(common.SanitizeForClient(logger, err))
	}
	switch {
	case errors.Is(err, extract.ErrUnknownFormat),
		errors.Is(err, service.ErrNoText),
		errors.Is(err, service.ErrTextTooLarge),
		errors.Is(err, ocr.ErrUnsupported),
		errors.Is(err, ocr.ErrTooLarge),
		errors.Is(err, common.ErrValidation),
		errors.Is(err, common.ErrInvalidInput):
		return common.InvalidArgumentError(err.Error())
	case errors.Is(err, common.ErrNotFound):
		return common.NotFoundError(err.Error())
	case errors.Is(err, ocr.ErrToolMissing):
		return status.Error(codes.FailedPrecondition, "pdf text extraction is not available on this server")
	case errors.Is(err, fs.ErrNotExist):
		return status.Error(codes.NotFound, "file not found")
	default:
		return common.InternalError(common.SanitizeForClient(logger, err))
	}
}
