// pattern: Imperative Shell
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"fourddev/internal/config"
	"fourddev/internal/instance"
	"fourddev/internal/launch"
	"fourddev/internal/logging"
)

// recordingRunner records every command and reports success. Metadata
// search always fails so launches fall back to the bundle id.
type recordingRunner struct {
	mu    sync.Mutex
	calls []string
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))
	return 0, nil
}

func (r *recordingRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	return nil, errors.New(name + " unavailable")
}

type testEnv struct {
	env      *Env
	runner   *recordingRunner
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	exitCode int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	te := &testEnv{
		runner:   &recordingRunner{},
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
		exitCode: -1,
	}
	te.env = &Env{
		Version:   "1.2.3",
		ConfigDir: t.TempDir(),
		Config:    config.DefaultConfig(),
		Launcher: launch.NewService(launch.Config{
			GOOS:      "darwin",
			LookupEnv: func(string) (string, bool) { return "", false },
			Runner:    te.runner,
		}),
		Logs:        logging.NewTestLogManager(),
		Stdin:       strings.NewReader(""),
		Stdout:      te.stdout,
		Stderr:      te.stderr,
		ExitFunc:    func(code int) { te.exitCode = code },
		Interactive: func() bool { return false },
		Pick: func(context.Context, []string) (string, error) {
			t.Error("picker should not be shown")
			return "", nil
		},
		GOOS:       "darwin",
		Getwd:      func() (string, error) { return t.TempDir(), nil },
		HomeDir:    func() (string, error) { return t.TempDir(), nil },
		Executable: func() (string, error) { return "/usr/local/bin/fourddev", nil },
	}
	return te
}

func (te *testEnv) execute(args ...string) {
	BuildApp(te.env).Execute(context.Background(), args)
}

func touch(t *testing.T, path string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenMethod_BundleIDFallback(t *testing.T) {
	te := newTestEnv(t)
	dir := t.TempDir()
	a := touch(t, filepath.Join(dir, "a.4dm"))
	b := touch(t, filepath.Join(dir, "b.4dm"))

	te.execute("open", "method", a, b)

	if te.exitCode != -1 {
		t.Fatalf("exit code = %d, stderr = %s", te.exitCode, te.stderr)
	}
	want := "Opened in 4D via bundle id (com.4D.4D):\n" + a + "\n" + b + "\n"
	if te.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", te.stdout.String(), want)
	}
	wantCalls := []string{"open -b com.4D.4D " + a, "open -b com.4D.4D " + b}
	if !reflect.DeepEqual(te.runner.calls, wantCalls) {
		t.Errorf("calls = %v, want %v", te.runner.calls, wantCalls)
	}
}

func TestOpenMethod_AppFlag(t *testing.T) {
	te := newTestEnv(t)
	dir := t.TempDir()
	app := filepath.Join(dir, "4D.app")
	if err := os.Mkdir(app, 0755); err != nil {
		t.Fatal(err)
	}
	m := touch(t, filepath.Join(dir, "m.4dm"))

	te.execute("open", "method", "--app", app, m)

	if !strings.HasPrefix(te.stdout.String(), "Opened in 4D (app: "+app+"):\n") {
		t.Errorf("stdout = %q", te.stdout.String())
	}
	if len(te.runner.calls) != 1 || te.runner.calls[0] != "open -a "+app+" "+m {
		t.Errorf("calls = %v", te.runner.calls)
	}
}

func TestOpenMethod_NoFiles_PrintsUsage(t *testing.T) {
	te := newTestEnv(t)

	te.execute("open", "method")

	if te.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", te.exitCode)
	}
	if !strings.Contains(te.stderr.String(), "Usage: fourddev open method") {
		t.Errorf("stderr = %q", te.stderr.String())
	}
}

func TestOpenMethod_MissingFile_ReportsError(t *testing.T) {
	te := newTestEnv(t)
	missing := filepath.Join(t.TempDir(), "gone.4dm")

	te.execute("open", "method", missing)

	if te.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", te.exitCode)
	}
	if got := te.stderr.String(); got != "error: File not found: "+missing+"\n" {
		t.Errorf("stderr = %q", got)
	}
	if len(te.runner.calls) != 0 {
		t.Errorf("calls = %v, want none", te.runner.calls)
	}
}

func TestOpenFile_Dispatch(t *testing.T) {
	te := newTestEnv(t)
	proj := touch(t, filepath.Join(t.TempDir(), "Project", "App.4DProject"))

	te.execute("open", "file", proj)

	if want := "Opened project in 4D via bundle id (com.4D.4D): " + proj + "\n"; te.stdout.String() != want {
		t.Errorf("stdout = %q, want %q", te.stdout.String(), want)
	}
}

func TestOpenFile_Unsupported(t *testing.T) {
	te := newTestEnv(t)

	te.execute("open", "file", "/tmp/notes.txt")

	if te.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", te.exitCode)
	}
	want := "error: File \"notes.txt\" is not a 4D file (.4dm or .4DProject)\n"
	if te.stderr.String() != want {
		t.Errorf("stderr = %q, want %q", te.stderr.String(), want)
	}
}

func TestOpenProject_ExplicitPath(t *testing.T) {
	te := newTestEnv(t)
	proj := touch(t, filepath.Join(t.TempDir(), "App.4DProject"))

	te.execute("open", "project", proj)

	if len(te.runner.calls) != 1 || te.runner.calls[0] != "open -b com.4D.4D "+proj {
		t.Errorf("calls = %v", te.runner.calls)
	}
}

func TestOpenProject_WorkspaceSearch(t *testing.T) {
	t.Run("none found", func(t *testing.T) {
		te := newTestEnv(t)
		root := t.TempDir()

		te.execute("open", "project", "--workspace", root)

		if te.exitCode != 1 {
			t.Errorf("exit code = %d, want 1", te.exitCode)
		}
		want := "error: no 4D project found under " + root + "; pass one explicitly\n"
		if te.stderr.String() != want {
			t.Errorf("stderr = %q, want %q", te.stderr.String(), want)
		}
		if len(te.runner.calls) != 0 {
			t.Errorf("calls = %v, want none", te.runner.calls)
		}
	})

	t.Run("single project opens", func(t *testing.T) {
		te := newTestEnv(t)
		root := t.TempDir()
		proj := touch(t, filepath.Join(root, "Project", "App.4DProject"))
		te.env.Getwd = func() (string, error) { return root, nil }

		te.execute("open", "project")

		if len(te.runner.calls) != 1 || te.runner.calls[0] != "open -b com.4D.4D "+proj {
			t.Errorf("calls = %v", te.runner.calls)
		}
	})

	t.Run("several without a terminal", func(t *testing.T) {
		te := newTestEnv(t)
		a, b := t.TempDir(), t.TempDir()
		touch(t, filepath.Join(a, "Project", "A.4DProject"))
		touch(t, filepath.Join(b, "Project", "B.4DProject"))

		te.execute("open", "project", "--workspace", a, "--workspace", b)

		if te.exitCode != 1 {
			t.Errorf("exit code = %d, want 1", te.exitCode)
		}
		if !strings.Contains(te.stderr.String(), "found 2 4D projects") {
			t.Errorf("stderr = %q", te.stderr.String())
		}
	})

	t.Run("several with picker", func(t *testing.T) {
		te := newTestEnv(t)
		a, b := t.TempDir(), t.TempDir()
		touch(t, filepath.Join(a, "Project", "A.4DProject"))
		projB := touch(t, filepath.Join(b, "Project", "B.4DProject"))

		var offered []string
		te.env.Interactive = func() bool { return true }
		te.env.Pick = func(_ context.Context, paths []string) (string, error) {
			offered = paths
			return paths[1], nil
		}

		te.execute("open", "project", "--workspace", a, "--workspace", b)

		if len(offered) != 2 {
			t.Errorf("picker offered %v, want 2 projects", offered)
		}
		if len(te.runner.calls) != 1 || te.runner.calls[0] != "open -b com.4D.4D "+projB {
			t.Errorf("calls = %v", te.runner.calls)
		}
	})

	t.Run("picker cancelled", func(t *testing.T) {
		te := newTestEnv(t)
		a, b := t.TempDir(), t.TempDir()
		touch(t, filepath.Join(a, "Project", "A.4DProject"))
		touch(t, filepath.Join(b, "Project", "B.4DProject"))
		te.env.Interactive = func() bool { return true }
		te.env.Pick = func(context.Context, []string) (string, error) { return "", nil }

		te.execute("open", "project", "--workspace", a, "--workspace", b)

		if te.stderr.String() != noProjectSelected+"\n" {
			t.Errorf("stderr = %q", te.stderr.String())
		}
		if len(te.runner.calls) != 0 {
			t.Errorf("calls = %v, want none", te.runner.calls)
		}
	})
}

func TestLocate(t *testing.T) {
	t.Run("fallback", func(t *testing.T) {
		te := newTestEnv(t)
		te.execute("locate")

		if want := "4D application not found; launches use bundle id com.4D.4D\n"; te.stdout.String() != want {
			t.Errorf("stdout = %q, want %q", te.stdout.String(), want)
		}
	})

	t.Run("override", func(t *testing.T) {
		te := newTestEnv(t)
		app := filepath.Join(t.TempDir(), "4D.app")
		if err := os.Mkdir(app, 0755); err != nil {
			t.Fatal(err)
		}

		te.execute("locate", "--app", app)

		if te.stdout.String() != app+"\n" {
			t.Errorf("stdout = %q, want %q", te.stdout.String(), app)
		}
	})
}

func TestVersion(t *testing.T) {
	te := newTestEnv(t)
	te.execute("version")

	if te.stdout.String() != "1.2.3\n" {
		t.Errorf("stdout = %q", te.stdout.String())
	}
}

func readServers(t *testing.T, path string) map[string]registrationEntry {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read settings: %v", err)
	}
	var doc struct {
		MCPServers map[string]registrationEntry `json:"mcpServers"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("parse settings: %v", err)
	}
	return doc.MCPServers
}

type registrationEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`
}

func TestMCPRegister(t *testing.T) {
	te := newTestEnv(t)
	settings := filepath.Join(t.TempDir(), "settings", "cline_mcp_settings.json")
	te.env.Config.ApplicationPath = "/Applications/4D.app"

	te.execute("mcp", "register", "--settings", settings)

	if te.exitCode != -1 {
		t.Fatalf("exit code = %d, stderr = %s", te.exitCode, te.stderr)
	}
	servers := readServers(t, settings)
	got, ok := servers[config.DefaultServerName]
	if !ok {
		t.Fatalf("entry %q missing: %v", config.DefaultServerName, servers)
	}
	want := registrationEntry{
		Command: "/usr/local/bin/fourddev",
		Args:    []string{"--config-dir", te.env.ConfigDir, "serve"},
		Env:     map[string]string{launch.AppPathEnv: "/Applications/4D.app"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("entry = %+v, want %+v", got, want)
	}
	if !strings.HasPrefix(te.stdout.String(), "Registered 4d-dev in ") {
		t.Errorf("stdout = %q", te.stdout.String())
	}
}

func TestMCPUnregister(t *testing.T) {
	te := newTestEnv(t)
	settings := filepath.Join(t.TempDir(), "cline_mcp_settings.json")

	te.execute("mcp", "register", "--settings", settings)
	te.stdout.Reset()

	te.execute("mcp", "unregister", "--settings", settings)
	if !strings.HasPrefix(te.stdout.String(), "Removed 4d-dev from ") {
		t.Errorf("stdout = %q", te.stdout.String())
	}
	if _, ok := readServers(t, settings)[config.DefaultServerName]; ok {
		t.Error("entry still present after unregister")
	}

	te.stdout.Reset()
	te.execute("mcp", "unregister", "--settings", settings)
	if !strings.HasPrefix(te.stdout.String(), "4d-dev is not registered in ") {
		t.Errorf("stdout = %q", te.stdout.String())
	}
}

func TestMCPRegister_NoDefaultSettingsPath(t *testing.T) {
	te := newTestEnv(t)
	te.env.GOOS = "linux"

	te.execute("mcp", "register")

	if te.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", te.exitCode)
	}
	if !strings.Contains(te.stderr.String(), "MCP configuration path not supported") {
		t.Errorf("stderr = %q", te.stderr.String())
	}
}

func TestMCPRegister_ConfiguredSettingsPath(t *testing.T) {
	te := newTestEnv(t)
	settings := filepath.Join(t.TempDir(), "host.json")
	te.env.Config.MCP.SettingsPath = settings
	te.env.Config.MCP.Command = "fourddev"
	te.env.Config.MCP.Args = []string{"serve"}

	te.execute("mcp", "register")

	got := readServers(t, settings)[config.DefaultServerName]
	if got.Command != "fourddev" || !reflect.DeepEqual(got.Args, []string{"serve"}) || got.Env != nil {
		t.Errorf("entry = %+v", got)
	}
}

func TestMCPWatch_SyncsBeforeWatching(t *testing.T) {
	te := newTestEnv(t)
	settings := filepath.Join(t.TempDir(), "cline_mcp_settings.json")
	te.env.Config.MCP.Enabled = true

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	BuildApp(te.env).Execute(ctx, []string{"mcp", "watch", "--settings", settings})

	if te.exitCode != -1 {
		t.Fatalf("exit code = %d, stderr = %s", te.exitCode, te.stderr)
	}
	if _, ok := readServers(t, settings)[config.DefaultServerName]; !ok {
		t.Error("watch should register when the config enables the server")
	}
}

func TestMCPWatch_SingleInstance(t *testing.T) {
	te := newTestEnv(t)
	held, err := instance.Acquire(te.env.ConfigDir, "watch")
	if err != nil {
		t.Fatal(err)
	}
	defer held.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	BuildApp(te.env).Execute(ctx, []string{"mcp", "watch", "--settings", filepath.Join(t.TempDir(), "s.json")})

	if te.exitCode != 1 {
		t.Errorf("exit code = %d, want 1", te.exitCode)
	}
	if !strings.Contains(te.stderr.String(), "watch already running") {
		t.Errorf("stderr = %q", te.stderr.String())
	}
}
