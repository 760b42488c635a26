// pattern: Imperative Shell

package process

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"fourddev/internal/logging"
)

// Runner spawns commands and waits for them to exit.
type Runner interface {
	// Run starts name with args and waits for it. A non-zero exit is
	// reported through exitCode with a nil error; err is only set when
	// the process could not be started or waited on.
	Run(ctx context.Context, name string, args ...string) (exitCode int, err error)

	// Output runs name with args and returns its stdout. Any non-zero
	// exit is an error.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands on the host with os/exec.
type ExecRunner struct {
	logger *logging.ScopedLogger
}

// NewExecRunner creates a host runner logging child output to logger.
func NewExecRunner(logger *logging.ScopedLogger) *ExecRunner {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &ExecRunner{logger: logger}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (int, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return -1, fmt.Errorf("stderr pipe: %w", err)
	}

	r.logger.Debug("starting process", "binary", name, "args", strings.Join(args, " "))

	if err := cmd.Start(); err != nil {
		return -1, err
	}

	// Drain both pipes into the logger before Wait closes them.
	var wg sync.WaitGroup
	wg.Add(2)
	go r.pump(&wg, stdout, name, "stdout")
	go r.pump(&wg, stderr, name, "stderr")
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code := exitErr.ExitCode()
			r.logger.Warn("process exited", "binary", name, "exit_code", code)
			return code, nil
		}
		return -1, err
	}

	r.logger.Debug("process exited cleanly", "binary", name)
	return 0, nil
}

func (r *ExecRunner) pump(wg *sync.WaitGroup, rd io.Reader, name, stream string) {
	defer wg.Done()
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		r.logger.Info(scanner.Text(), "stream", stream, "binary", name)
	}
}

// Output implements Runner.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
