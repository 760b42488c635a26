// pattern: Imperative Shell

package launch

import (
	"context"

	"fourddev/internal/logging"
	"fourddev/internal/process"
)

const openerBinary = "open"

// Opener hands files to 4D through the macOS open command.
type Opener struct {
	bundleID string
	runner   process.Runner
	logger   *logging.ScopedLogger
}

// NewOpener creates an Opener launching through runner.
func NewOpener(bundleID string, runner process.Runner, logger *logging.ScopedLogger) *Opener {
	if bundleID == "" {
		bundleID = DefaultBundleID
	}
	if logger == nil {
		logger = logging.NopLogger()
	}
	if runner == nil {
		runner = process.NewExecRunner(logger)
	}
	return &Opener{bundleID: bundleID, runner: runner, logger: logger}
}

// Args builds the open invocation: -a with a concrete application path,
// otherwise -b with the bundle identity.
func (o *Opener) Args(appPath, target string) []string {
	if appPath != "" {
		return []string{"-a", appPath, target}
	}
	return []string{"-b", o.bundleID, target}
}

// Open launches target and waits for open to exit. It does no validation
// of target. The wait ignores cancellation of ctx; open only hands the
// file to the launch service and returns.
func (o *Opener) Open(ctx context.Context, appPath, target string) error {
	args := o.Args(appPath, target)

	code, err := o.runner.Run(context.WithoutCancel(ctx), openerBinary, args...)
	if err != nil {
		o.logger.Error("failed to start opener", "error", err, "target", target)
		return &SpawnError{Err: err}
	}
	if code != 0 {
		o.logger.Warn("opener failed", "exit_code", code, "target", target)
		return &ExitError{Code: code}
	}

	o.logger.Info("opened", "target", target, "app", appPath)
	return nil
}
