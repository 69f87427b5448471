package tlsroots

import (
	"context"
	"crypto/tls"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yndnr/deckshare/internal/core/domain"
	"github.com/yndnr/deckshare/internal/telemetry/logger"
	"github.com/yndnr/deckshare/internal/testutil"
)

func writePair(t *testing.T) (certFile, keyFile string) {
	t.Helper()
	dir := t.TempDir()
	certFile = filepath.Join(dir, "server_cert.pem")
	keyFile = filepath.Join(dir, "server_key.pem")
	testutil.WriteSelfSignedCert(t, certFile, keyFile)
	return certFile, keyFile
}

func TestNewWatcher(t *testing.T) {
	certFile, keyFile := writePair(t)

	w, err := NewWatcher(certFile, keyFile, WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	defer w.Stop()

	cert, err := w.GetCertificate(nil)
	if err != nil || cert == nil {
		t.Fatalf("GetCertificate() = %v, %v", cert, err)
	}
	if w.NotAfter().Before(time.Now()) {
		t.Errorf("NotAfter() = %v, want a future time", w.NotAfter())
	}
}

func TestNewWatcher_Failures(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.pem")
	if err := os.WriteFile(garbage, []byte("not a certificate"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		certFile string
		keyFile  string
	}{
		{"missing files", filepath.Join(dir, "missing_cert.pem"), filepath.Join(dir, "missing_key.pem")},
		{"invalid contents", garbage, garbage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewWatcher(tt.certFile, tt.keyFile, WithLogger(logger.Discard()))
			if err == nil {
				t.Fatal("NewWatcher() should fail")
			}
			if !errors.Is(err, domain.ErrTLSMaterial) {
				t.Errorf("error = %v, want ErrTLSMaterial", err)
			}
		})
	}
}

func TestWatcher_RunStops(t *testing.T) {
	certFile, keyFile := writePair(t)

	w, err := NewWatcher(certFile, keyFile, WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	t.Run("stop", func(t *testing.T) {
		done := make(chan error, 1)
		go func() { done <- w.Run(context.Background()) }()

		time.Sleep(50 * time.Millisecond)
		w.Stop()
		w.Stop() // idempotent

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error = %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("Run() did not return after Stop()")
		}
	})

	t.Run("context", func(t *testing.T) {
		w2, err := NewWatcher(certFile, keyFile, WithLogger(logger.Discard()))
		if err != nil {
			t.Fatalf("NewWatcher() error = %v", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- w2.Run(ctx) }()

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("Run() did not return after cancel")
		}
	})
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	certFile, keyFile := writePair(t)

	w, err := NewWatcher(certFile, keyFile,
		WithLogger(logger.Discard()),
		WithDebounce(10*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.settle = 10 * time.Millisecond

	initial, _ := w.GetCertificate(nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(100 * time.Millisecond)
	testutil.WriteSelfSignedCert(t, certFile, keyFile)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		current, _ := w.GetCertificate(nil)
		if current != initial && current.Leaf != nil &&
			current.Leaf.SerialNumber.Cmp(initial.Leaf.SerialNumber) != 0 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Error("certificate was not reloaded after the files changed")
}

func TestWatcher_Options(t *testing.T) {
	certFile, keyFile := writePair(t)
	l := logger.Discard()

	w, err := NewWatcher(certFile, keyFile,
		WithLogger(l),
		WithDebounce(200*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	if w.logger != l {
		t.Error("WithLogger() option not applied")
	}
	if w.debounce != 200*time.Millisecond {
		t.Errorf("WithDebounce() option not applied, got %v", w.debounce)
	}
}

func TestWatcher_TLSConfig(t *testing.T) {
	certFile, keyFile := writePair(t)

	w, err := NewWatcher(certFile, keyFile, WithLogger(logger.Discard()))
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}

	cfg := w.TLSConfig()
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %x, want TLS 1.2", cfg.MinVersion)
	}
	cert, err := cfg.GetCertificate(&tls.ClientHelloInfo{})
	if err != nil || cert == nil {
		t.Errorf("GetCertificate() = %v, %v", cert, err)
	}
}
