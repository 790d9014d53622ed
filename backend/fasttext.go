package backend

import (
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"time"

	"github.com/chonker8/engine/logger"
)

// FastTextTimeout is the suggested timeout for one FastText invocation.
const FastTextTimeout = 10 * time.Second

// FastTextBackend invokes an external layout-preserving text extraction
// tool (conventionally pdftotext) for a single page. It preserves columns
// and whitespace that NativeText discards.
type FastTextBackend struct {
	// BinaryPath is the external tool's executable path, e.g. "pdftotext".
	BinaryPath string
	Timeout    time.Duration
}

// NewFastTextBackend returns a backend invoking binaryPath with the default timeout.
func NewFastTextBackend(binaryPath string) *FastTextBackend {
	return &FastTextBackend{BinaryPath: binaryPath, Timeout: FastTextTimeout}
}

func (b *FastTextBackend) Extract(ctx context.Context, req Request) (string, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = FastTextTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	page := strconv.Itoa(req.PageIndex)
	args := []string{
		"-f", page,
		"-l", page,
		"-layout",
		"-nopgbrk",
		req.DocumentPath,
		"-", // write to stdout
	}

	cmd := exec.CommandContext(ctx, b.BinaryPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("fasttext: invoking external tool", "binary", b.BinaryPath, "page", req.PageIndex, true)

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return "", newError(Timeout, "fasttext tool timed out", ctx.Err())
	}
	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if ok := errorsAs(err, &exitErr); ok {
			code = exitErr.ExitCode()
		}
		e := newError(ExternalToolFailed, stderr.String(), err)
		e.Code = code
		return "", e
	}

	return stdout.String(), nil
}

// errorsAs reports whether err is itself an *exec.ExitError (wrapped errors
// are not unwrapped) and, if so, stores it in *target.
func errorsAs(err error, target **exec.ExitError) bool {
	if ee, ok := err.(*exec.ExitError); ok {
		*target = ee
		return true
	}
	return false
}
