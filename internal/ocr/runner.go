package ocr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// ErrToolMissing means the configured text extraction binary is not installed.
var ErrToolMissing = errors.New("text extraction tool not found")

// Runner lets us stub external commands in tests.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// stderrTail bounds how much of a failing tool's stderr is logged and returned.
const stderrTail = 4 << 10

type execRunner struct {
	logger *slog.Logger
}

func (r execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		r.logger.Error("text tool missing", "cmd", name, "error", err)
		return nil, nil, fmt.Errorf("%w: %s", ErrToolMissing, name)
	}

	start := time.Now()
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	took := time.Since(start)
	errTail := tail(stderr.Bytes(), stderrTail)

	if err != nil {
		r.logger.Error("text tool failed",
			"cmd", name,
			"file", lastArg(args),
			"duration_ms", took.Milliseconds(),
			"error", err,
			"stderr", string(errTail),
		)
		return stdout.Bytes(), errTail, err
	}
	r.logger.Debug("text tool ok",
		"cmd", name,
		"file", lastArg(args),
		"duration_ms", took.Milliseconds(),
		"stdout_bytes", stdout.Len(),
	)
	return stdout.Bytes(), errTail, nil
}

// tail keeps the last n bytes, where tools print the actual failure.
func tail(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}

// lastArg is the input path for pdftotext style invocations ending in "-".
func lastArg(args []string) string {
	for i := len(args) - 1; i >= 0; i-- {
		if args[i] != "-" {
			return args[i]
		}
	}
	return ""
}
