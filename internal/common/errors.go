package common

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...any) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

// clientSafePatterns maps internal error text to messages safe to return to
// remote callers.
var clientSafePatterns = []struct{ pattern, message string }{
	{"context deadline", "request timed out"},
	{"context canceled", "request cancelled"},
	{"database", "storage temporarily unavailable"},
	{"pdftotext", "could not read document text"},
}

// SanitizeForClient logs err in full and returns a message that does not
// leak paths, SQL or driver details.
func SanitizeForClient(logger *slog.Logger, err error) string {
	if err == nil {
		return ""
	}
	if logger == nil {
		logger = slog.Default()
	}
	lower := strings.ToLower(err.Error())
	for _, p := range clientSafePatterns {
		if strings.Contains(lower, p.pattern) {
			logger.Debug("sanitizing error for client", "original", err.Error(), "sanitized", p.message)
			return p.message
		}
	}
	logger.Error("internal error (sanitized for client)", "error", err)
	return "internal error"
}
