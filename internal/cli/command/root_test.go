package command

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/deckshare/internal/core/watchdog"
	"github.com/yndnr/deckshare/internal/server/app"
	"github.com/yndnr/deckshare/internal/server/config"
	"github.com/yndnr/deckshare/internal/testutil"
)

// runApp runs the CLI with a stubbed server and returns the config the
// server would have been started with.
func runApp(t *testing.T, args ...string) (*config.ServerConfig, string, error) {
	t.Helper()

	var got *config.ServerConfig
	orig := runServer
	runServer = func(ctx context.Context, cfg *config.ServerConfig, opts app.Options) app.Result {
		got = cfg
		if opts.Logger == nil {
			t.Error("server should receive a logger")
		}
		return app.Result{Reason: watchdog.ReasonIdle}
	}
	t.Cleanup(func() { runServer = orig })

	var stdout, stderr bytes.Buffer
	a := App()
	a.Writer = &stdout
	a.ErrWriter = &stderr
	a.ExitErrHandler = func(*cli.Context, error) {}

	err := a.Run(append([]string{"deckshare-server", "--log-file", ""}, args...))
	return got, stdout.String() + stderr.String(), err
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}

func TestApp(t *testing.T) {
	a := App()

	if a.Name != "deckshare-server" {
		t.Errorf("Name = %q, want %q", a.Name, "deckshare-server")
	}
	if a.Version == "" {
		t.Error("Version should not be empty")
	}
	if a.Action == nil {
		t.Error("Action should be set")
	}

	names := make(map[string]bool)
	for _, flag := range globalFlags() {
		if len(flag.Names()) == 0 {
			t.Fatal("flag should have at least one name")
		}
		names[flag.Names()[0]] = true
	}
	for _, want := range []string{"config", "log-level", "log-format", "log-file", "idle-timeout", "metrics", "preview", "check"} {
		if !names[want] {
			t.Errorf("missing flag %q", want)
		}
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    Positional
		wantErr bool
	}{
		{
			name: "all arguments",
			args: []string{"/home/deck", "8443", "/plugins/share"},
			want: Positional{BaseDir: "/home/deck", Port: 8443, RawPort: "8443", PluginDir: "/plugins/share"},
		},
		{
			name: "unparsable port",
			args: []string{"/home/deck", "http", "/plugins/share"},
			want: Positional{BaseDir: "/home/deck", RawPort: "http", PluginDir: "/plugins/share"},
		},
		{
			name: "port out of range",
			args: []string{"/home/deck", "70000", "/plugins/share"},
			want: Positional{BaseDir: "/home/deck", RawPort: "70000", PluginDir: "/plugins/share"},
		},
		{
			name:    "no arguments",
			args:    nil,
			wantErr: true,
		},
		{
			name:    "missing plugin dir",
			args:    []string{"/home/deck", "9999"},
			wantErr: true,
		},
		{
			name:    "empty plugin dir",
			args:    []string{"/home/deck", "9999", ""},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if code := exitCode(err); code != 1 {
					t.Errorf("exit code = %d, want 1", code)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseArgs: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseArgs = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestServe_PositionalArgs(t *testing.T) {
	base, plugin := t.TempDir(), t.TempDir()

	cfg, out, err := runApp(t, base, "8443", plugin)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cfg == nil {
		t.Fatal("server was not started")
	}
	if cfg.Share.BaseDir != base || cfg.Share.PluginDir != plugin {
		t.Errorf("dirs = %q, %q", cfg.Share.BaseDir, cfg.Share.PluginDir)
	}
	if cfg.Server.Port != 8443 {
		t.Errorf("Port = %d, want 8443", cfg.Server.Port)
	}
	if cfg.Idle.Timeout != config.DefaultIdleTimeout {
		t.Errorf("Idle.Timeout = %v, want %v", cfg.Idle.Timeout, config.DefaultIdleTimeout)
	}
	if strings.Contains(out, "missing or invalid") {
		t.Errorf("unexpected port diagnostic: %q", out)
	}
}

func TestServe_DefaultPortDiagnostic(t *testing.T) {
	cfg, out, err := runApp(t, t.TempDir(), "not-a-port", t.TempDir())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cfg.Server.Port != config.DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Server.Port, config.DefaultPort)
	}
	if !strings.Contains(out, `port argument "not-a-port" missing or invalid, using 9999`) {
		t.Errorf("output = %q, want port diagnostic", out)
	}
}

func TestServe_MissingArguments(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"nothing", nil},
		{"base only", []string{"/home/deck"}},
		{"no plugin dir", []string{"/home/deck", "9999"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, _, err := runApp(t, tt.args...)
			if err == nil {
				t.Fatal("expected usage error")
			}
			if code := exitCode(err); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if cfg != nil {
				t.Error("server should not start")
			}
		})
	}
}

func TestServe_Flags(t *testing.T) {
	cfg, _, err := runApp(t,
		"--log-level", "debug",
		"--log-format", "text",
		"--idle-timeout", "5s",
		"--metrics",
		"--preview",
		t.TempDir(), "9000", t.TempDir(),
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "text" {
		t.Errorf("log = %q/%q", cfg.Log.Level, cfg.Log.Format)
	}
	if cfg.Log.File != "" {
		t.Errorf("Log.File = %q, want empty", cfg.Log.File)
	}
	if cfg.Idle.Timeout != 5*time.Second {
		t.Errorf("Idle.Timeout = %v, want 5s", cfg.Idle.Timeout)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should be true")
	}
	if !cfg.Preview.Enabled {
		t.Error("Preview.Enabled should be true")
	}
}

func TestServe_Priority(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deckshare.yaml")
	yaml := `
server:
  port: 7000
  rate_limit: 50
idle:
  timeout: 90s
browse:
  reject_traversal: true
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("DECKSHARE_IDLE_TIMEOUT", "120s")
	t.Setenv("DECKSHARE_SERVER_PORT", "7100")

	t.Run("env beats file", func(t *testing.T) {
		cfg, out, err := runApp(t, "--config", path, t.TempDir(), "", t.TempDir())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if cfg.Idle.Timeout != 120*time.Second {
			t.Errorf("Idle.Timeout = %v, want 120s", cfg.Idle.Timeout)
		}
		if cfg.Server.Port != 7100 {
			t.Errorf("Port = %d, want 7100", cfg.Server.Port)
		}
		if cfg.Server.RateLimit != 50 {
			t.Errorf("RateLimit = %v, want 50", cfg.Server.RateLimit)
		}
		if !cfg.Browse.RejectTraversal {
			t.Error("RejectTraversal should come from the file")
		}
		if !strings.Contains(out, "using 7100") {
			t.Errorf("diagnostic should name the configured port: %q", out)
		}
	})

	t.Run("command line beats env", func(t *testing.T) {
		cfg, _, err := runApp(t, "--config", path, "--idle-timeout", "3s", t.TempDir(), "8000", t.TempDir())
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if cfg.Idle.Timeout != 3*time.Second {
			t.Errorf("Idle.Timeout = %v, want 3s", cfg.Idle.Timeout)
		}
		if cfg.Server.Port != 8000 {
			t.Errorf("Port = %d, want 8000", cfg.Server.Port)
		}
	})
}

func TestServe_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"log level", []string{"--log-level", "loud"}},
		{"log format", []string{"--log-format", "xml"}},
		{"idle timeout", []string{"--idle-timeout", "0s"}},
		{"missing file", []string{"--config", "/nonexistent/deckshare.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append(tt.args, t.TempDir(), "9999", t.TempDir())
			cfg, _, err := runApp(t, args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if code := exitCode(err); code != 1 {
				t.Errorf("exit code = %d, want 1", code)
			}
			if cfg != nil {
				t.Error("server should not start")
			}
		})
	}
}

func TestServe_Check(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		plugin := testutil.PluginDir(t, config.DefaultCertFile, config.DefaultKeyFile)

		cfg, out, err := runApp(t, "--check", t.TempDir(), "9443", plugin)
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if cfg != nil {
			t.Error("check should not start the server")
		}
		if !strings.Contains(out, "configuration OK") || !strings.Contains(out, "0.0.0.0:9443") {
			t.Errorf("output = %q", out)
		}
		if !strings.Contains(out, "certificate valid until ") {
			t.Errorf("output should report the certificate expiry: %q", out)
		}
	})

	t.Run("missing certificates", func(t *testing.T) {
		plugin := testutil.PluginDir(t, "", "")

		_, _, err := runApp(t, "--check", t.TempDir(), "9443", plugin)
		if err == nil {
			t.Fatal("expected error for missing key pair")
		}
		if code := exitCode(err); code != 1 {
			t.Errorf("exit code = %d, want 1", code)
		}
	})
}
