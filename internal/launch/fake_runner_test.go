package launch

import (
	"context"
	"strings"
	"sync"
)

type runCall struct {
	name string
	args []string
}

// fakeRunner records invocations and replays scripted results keyed by
// the last argument (the target file) or the binary name.
type fakeRunner struct {
	mu      sync.Mutex
	calls   []runCall
	codes   map[string]int
	errs    map[string]error
	outputs map[string]string
	outErr  error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		codes:   make(map[string]int),
		errs:    make(map[string]error),
		outputs: make(map[string]string),
	}
}

func (f *fakeRunner) record(name string, args []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, runCall{name: name, args: append([]string(nil), args...)})
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (int, error) {
	f.record(name, args)
	key := name
	if len(args) > 0 {
		key = args[len(args)-1]
	}
	if err, ok := f.errs[key]; ok {
		return -1, err
	}
	return f.codes[key], nil
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	f.record(name, args)
	if f.outErr != nil {
		return nil, f.outErr
	}
	return []byte(f.outputs[name]), nil
}

// opened returns the targets passed to open, in order.
func (f *fakeRunner) opened() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var targets []string
	for _, c := range f.calls {
		if c.name == "open" {
			targets = append(targets, c.args[len(c.args)-1])
		}
	}
	return targets
}

func (f *fakeRunner) callsTo(name string) []runCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []runCall
	for _, c := range f.calls {
		if c.name == name {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeRunner) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (c runCall) String() string {
	return c.name + " " + strings.Join(c.args, " ")
}

func noEnv(string) (string, bool) { return "", false }

func envWith(key, value string) LookupEnvFunc {
	return func(k string) (string, bool) {
		if k == key {
			return value, true
		}
		return "", false
	}
}

// existsIn reports only the given paths as present.
func existsIn(paths ...string) func(string) bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(p string) bool { return set[p] }
}
