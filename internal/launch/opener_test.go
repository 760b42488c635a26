package launch

import (
	"context"
	"errors"
	"os/exec"
	"reflect"
	"testing"
)

func TestOpener_Args(t *testing.T) {
	o := NewOpener("com.4D.4D", newFakeRunner(), nil)

	if got := o.Args("/Applications/4D.app", "/p/App.4DProject"); !reflect.DeepEqual(got, []string{"-a", "/Applications/4D.app", "/p/App.4DProject"}) {
		t.Errorf("Args(app) = %q", got)
	}
	if got := o.Args("", "/p/a.4dm"); !reflect.DeepEqual(got, []string{"-b", "com.4D.4D", "/p/a.4dm"}) {
		t.Errorf("Args(no app) = %q", got)
	}
}

func TestOpener_Open_Success(t *testing.T) {
	runner := newFakeRunner()
	o := NewOpener("", runner, nil)

	if err := o.Open(context.Background(), "", "/p/a.4dm"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	calls := runner.callsTo("open")
	if len(calls) != 1 || calls[0].String() != "open -b com.4D.4D /p/a.4dm" {
		t.Errorf("calls = %v", calls)
	}
}

func TestOpener_Open_NonZeroExit(t *testing.T) {
	runner := newFakeRunner()
	runner.codes["/p/a.4dm"] = 2
	o := NewOpener("", runner, nil)

	err := o.Open(context.Background(), "", "/p/a.4dm")
	if !errors.Is(err, ErrProcessExitNonZero) {
		t.Fatalf("Open() error = %v, want ErrProcessExitNonZero", err)
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 2 {
		t.Errorf("Open() error = %#v, want ExitError{Code: 2}", err)
	}
	if err.Error() != "open exited with code 2" {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestOpener_Open_SpawnError(t *testing.T) {
	runner := newFakeRunner()
	runner.errs["/p/a.4dm"] = exec.ErrNotFound
	o := NewOpener("", runner, nil)

	err := o.Open(context.Background(), "", "/p/a.4dm")
	if !errors.Is(err, ErrProcessSpawn) {
		t.Errorf("Open() error = %v, want ErrProcessSpawn", err)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("Open() error = %v, want wrapped exec.ErrNotFound", err)
	}
}

func TestOpener_Open_IgnoresCancellation(t *testing.T) {
	var seen context.Context
	runner := runnerFunc(func(ctx context.Context, _ string, _ ...string) (int, error) {
		seen = ctx
		return 0, nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewOpener("", runner, nil).Open(ctx, "", "/p/a.4dm"); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if seen.Err() != nil {
		t.Errorf("runner context was cancelled: %v", seen.Err())
	}
}

type runnerFunc func(ctx context.Context, name string, args ...string) (int, error)

func (f runnerFunc) Run(ctx context.Context, name string, args ...string) (int, error) {
	return f(ctx, name, args...)
}

func (f runnerFunc) Output(context.Context, string, ...string) ([]byte, error) {
	return nil, errors.New("not scripted")
}
