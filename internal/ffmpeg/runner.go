package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"time"
)

const (
	maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics
	maxStdoutBytes = 64 * 1024
)

// RunResult describes one finished subprocess.
type RunResult struct {
	ExitCode   int
	Stdout     string
	StderrTail string
	Duration   time.Duration
}

func (r RunResult) IsSuccess() bool {
	return r.ExitCode == 0
}

// run executes bin with args, keeping a bounded stdout and the tail of stderr.
// A binary that cannot be started reports exit code -1.
func run(ctx context.Context, bin string, args ...string) RunResult {
	start := time.Now()

	cmd := exec.CommandContext(ctx, bin, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = io.Writer(&limitedWriter{w: &stdoutBuf, limit: maxStdoutBytes})
	cmd.Stderr = io.Writer(&limitedWriter{w: &stderrBuf, limit: maxStderrBytes})

	err := cmd.Run()
	elapsed := time.Since(start)

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
			stderrBuf.WriteString(err.Error())
		}
	}
	if exitCode == 0 && ctx.Err() != nil {
		exitCode = -1
		stderrBuf.WriteString(ctx.Err().Error())
	}

	return RunResult{
		ExitCode:   exitCode,
		Stdout:     stdoutBuf.String(),
		StderrTail: stderrBuf.String(),
		Duration:   elapsed,
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		b := lw.w.Bytes()
		tail := append([]byte(nil), b[len(b)-lw.limit:]...)
		lw.w.Reset()
		lw.w.Write(tail)
	}
	return n, nil
}
