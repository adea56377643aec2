package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/zendalabs/zenda/internal/config"
)

func TestNewServer(t *testing.T) {
	cfg := config.Default()
	cfg.ListenAddr = "127.0.0.1:9999"

	srv, cleanup, err := newServer(cfg)
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	defer cleanup()

	if srv.Addr != "127.0.0.1:9999" {
		t.Fatalf("addr = %s", srv.Addr)
	}
	if srv.Handler == nil {
		t.Fatalf("expected handler to be set")
	}
}

func TestNewServerWithSQLite(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.DB = config.DBConfig{Driver: "sqlite", DSN: filepath.Join(dir, "zenda.db")}
	cfg.RateLimit = config.RateLimitConfig{Capacity: 10, RefillWindow: config.Duration(time.Minute)}

	srv, cleanup, err := newServer(cfg)
	if err != nil {
		t.Fatalf("newServer: %v", err)
	}
	defer cleanup()

	if srv.Handler == nil {
		t.Fatalf("expected handler to be set")
	}
}

func TestNewServerBadScorecardPath(t *testing.T) {
	cfg := config.Default()
	cfg.ScorecardPath = "does-not-exist.yaml"

	if _, _, err := newServer(cfg); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunDefaults(t *testing.T) {
	factory := func(cfg config.Config) (*http.Server, func(), error) {
		if cfg.ListenAddr != ":8080" {
			t.Fatalf("expected default addr, got %s", cfg.ListenAddr)
		}
		if cfg.DB.Driver != "" {
			t.Fatalf("expected in-memory store, got driver %q", cfg.DB.Driver)
		}
		return &http.Server{Addr: cfg.ListenAddr}, func() {}, nil
	}

	listen := func(_ *http.Server) error {
		return http.ErrServerClosed
	}

	getenv := func(string) string { return "" }
	if err := run(nil, getenv, listen, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunEnvOverrides(t *testing.T) {
	factory := func(cfg config.Config) (*http.Server, func(), error) {
		if cfg.ListenAddr != "127.0.0.1:1234" {
			t.Fatalf("addr = %s", cfg.ListenAddr)
		}
		if cfg.Auth.Token != "secret" {
			t.Fatalf("token = %q", cfg.Auth.Token)
		}
		return &http.Server{Addr: cfg.ListenAddr}, func() {}, nil
	}

	listen := func(_ *http.Server) error { return http.ErrServerClosed }
	getenv := func(key string) string {
		switch key {
		case "ZENDA_LISTEN_ADDR":
			return "127.0.0.1:1234"
		case "ZENDA_API_TOKEN":
			return "secret"
		}
		return ""
	}

	if err := run(nil, getenv, listen, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRunError(t *testing.T) {
	listenErr := errors.New("listen failed")
	listen := func(_ *http.Server) error {
		return listenErr
	}

	factory := func(cfg config.Config) (*http.Server, func(), error) {
		return &http.Server{Addr: cfg.ListenAddr}, func() {}, nil
	}

	if err := run(nil, func(string) string { return "" }, listen, factory); err == nil {
		t.Fatalf("expected error")
	}
}

func TestRunLoadsConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zenda.yaml")
	if err := os.WriteFile(path, []byte("listen_addr: \":9999\"\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	factory := func(cfg config.Config) (*http.Server, func(), error) {
		if cfg.ListenAddr != ":9999" {
			t.Fatalf("expected addr from config, got %s", cfg.ListenAddr)
		}
		return &http.Server{Addr: cfg.ListenAddr}, func() {}, nil
	}

	listen := func(_ *http.Server) error { return http.ErrServerClosed }
	getenv := func(key string) string {
		if key == "ZENDA_CONFIG_PATH" {
			return path
		}
		return ""
	}

	if err := run(nil, getenv, listen, factory); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "a", "b"); got != "a" {
		t.Fatalf("expected a, got %s", got)
	}
	if got := firstNonEmpty("", ""); got != "" {
		t.Fatalf("expected empty, got %s", got)
	}
}

func TestListenAndServeInvalidAddr(t *testing.T) {
	err := listenAndServe(&http.Server{Addr: "127.0.0.1"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestMainNoError(t *testing.T) {
	oldRun := runFn
	oldFatal := fatalf
	defer func() {
		runFn = oldRun
		fatalf = oldFatal
	}()

	runFn = func(args []string, envFn envFn, listenFn listenFn, serverFactory serverFactory) error {
		return nil
	}

	called := false
	fatalf = func(string, ...any) {
		called = true
	}

	main()
	if called {
		t.Fatalf("unexpected fatal call")
	}
}

func TestMainError(t *testing.T) {
	oldRun := runFn
	oldFatal := fatalf
	defer func() {
		runFn = oldRun
		fatalf = oldFatal
	}()

	runFn = func(args []string, envFn envFn, listenFn listenFn, serverFactory serverFactory) error {
		return errors.New("boom")
	}

	called := false
	fatalf = func(string, ...any) {
		called = true
	}

	main()
	if !called {
		t.Fatalf("expected fatal call")
	}
}
