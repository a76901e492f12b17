// Package engine wraps the external FFmpeg tooling behind a lazily-loaded,
// process-wide instance. Callers acquire the shared engine, run commands
// against per-call scratch namespaces, and release them in a guaranteed
// cleanup step regardless of how the call ends.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// ErrEngineLoad marks a failed engine load. A failed load is terminal for
// the process: later acquisitions return the same error without retrying.
var ErrEngineLoad = errors.New("engine load failed")

// Config selects the FFmpeg binaries and the scratch root.
type Config struct {
	FFmpegPath  string
	FFprobePath string
	ScratchRoot string
}

// Engine is the shared handle to the loaded FFmpeg tooling.
type Engine struct {
	ffmpegPath  string
	ffprobePath string
	scratchRoot string
}

var global struct {
	mu   sync.Mutex
	done chan struct{}
	eng  *Engine
	err  error
}

// Acquire returns the shared engine, loading it on first use. Concurrent
// first-time callers await the same in-flight load rather than triggering
// duplicate loads.
func Acquire(ctx context.Context, cfg Config) (*Engine, error) {
	global.mu.Lock()
	if global.done == nil {
		done := make(chan struct{})
		global.done = done
		go func() {
			eng, err := load(cfg)
			global.mu.Lock()
			global.eng = eng
			global.err = err
			global.mu.Unlock()
			close(done)
		}()
	}
	done := global.done
	global.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-done:
	}

	global.mu.Lock()
	defer global.mu.Unlock()
	if global.err != nil {
		return nil, global.err
	}
	return global.eng, nil
}

func load(cfg Config) (*Engine, error) {
	if loadHook != nil {
		loadHook()
	}

	ffmpegPath := cfg.FFmpegPath
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	ffprobePath := cfg.FFprobePath
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	for _, bin := range []string{ffmpegPath, ffprobePath} {
		if err := resolveBinary(bin); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrEngineLoad, err)
		}
	}

	scratchRoot := cfg.ScratchRoot
	if scratchRoot == "" {
		scratchRoot = filepath.Join(os.TempDir(), "tamilring-engine")
	}
	if err := os.MkdirAll(scratchRoot, 0755); err != nil {
		return nil, fmt.Errorf("%w: scratch root: %v", ErrEngineLoad, err)
	}

	return &Engine{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		scratchRoot: scratchRoot,
	}, nil
}

func resolveBinary(bin string) error {
	if strings.ContainsRune(bin, os.PathSeparator) {
		info, err := os.Stat(bin)
		if err != nil {
			return fmt.Errorf("binary %s: %w", bin, err)
		}
		if info.IsDir() {
			return fmt.Errorf("binary %s is a directory", bin)
		}
		return nil
	}
	if _, err := exec.LookPath(bin); err != nil {
		return fmt.Errorf("binary %s: %w", bin, err)
	}
	return nil
}

// engineError wraps FFmpeg command errors with additional context
type engineError struct {
	cmd     string
	output  string
	wrapped error
}

func (e *engineError) Error() string {
	return fmt.Sprintf("engine error: %s\nCommand: %s\nOutput: %s", e.wrapped, e.cmd, e.output)
}

func (e *engineError) Unwrap() error {
	return e.wrapped
}

// newEngineError creates a new engineError with truncated command output
func newEngineError(cmd *exec.Cmd, output []byte, err error) error {
	cmdStr := cmd.String()
	if len(cmdStr) > 200 {
		cmdStr = cmdStr[:200] + "..."
	}
	out := string(output)
	if len(out) > 2000 {
		out = out[len(out)-2000:]
	}
	return &engineError{
		cmd:     cmdStr,
		output:  out,
		wrapped: err,
	}
}

// Exec runs ffmpeg with the given arguments.
func (e *Engine) Exec(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, e.ffmpegPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return newEngineError(cmd, output, err)
	}
	return nil
}
