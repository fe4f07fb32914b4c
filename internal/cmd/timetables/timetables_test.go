package timetables

import (
	"context"
	"errors"
	"flag"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/louisbranch/db-timetables-mcp/internal/services/timetable/client"
)

func TestParseConfigDefaults(t *testing.T) {
	environ := map[string]string{
		"DB_TIMETABLE_CLIENT_ID":     "id",
		"DB_TIMETABLE_CLIENT_SECRET": "secret",
	}

	fs := flag.NewFlagSet("timetables", flag.ContinueOnError)
	cfg, err := parseConfig(fs, nil, environ)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.BaseURL != client.DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", cfg.BaseURL)
	}
	if cfg.Transport != "stdio" {
		t.Fatalf("expected default transport stdio, got %q", cfg.Transport)
	}
	if cfg.ListenAddr() != "localhost:8080" {
		t.Fatalf("expected localhost:8080, got %q", cfg.ListenAddr())
	}
	if cfg.Endpoint != "/sse" || cfg.LogLevel != "info" || cfg.LogFormat != "text" || cfg.Locale != "en-US" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected no upstream timeout, got %v", cfg.HTTPTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	environ := map[string]string{
		"DB_TIMETABLE_CLIENT_ID":         "id",
		"DB_TIMETABLE_CLIENT_SECRET":     "secret",
		"DB_TIMETABLE_TRANSPORT":         "http",
		"DB_TIMETABLE_PORT":              "9000",
		"DB_TIMETABLE_HTTP_TIMEOUT":      "15s",
		"DB_TIMETABLE_MCP_ALLOWED_HOSTS": "a.example,b.example",
	}

	fs := flag.NewFlagSet("timetables", flag.ContinueOnError)
	args := []string{"-transport", "sse", "-http-addr", "0.0.0.0", "-endpoint", "events", "-locale", "de-DE"}
	cfg, err := parseConfig(fs, args, environ)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.Transport != "sse" {
		t.Fatalf("expected flag transport, got %q", cfg.Transport)
	}
	if cfg.ListenAddr() != "0.0.0.0:9000" {
		t.Fatalf("expected env port with flag host, got %q", cfg.ListenAddr())
	}
	if cfg.Endpoint != "events" || cfg.Locale != "de-DE" {
		t.Fatalf("unexpected flags: %+v", cfg)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Fatalf("http timeout = %v", cfg.HTTPTimeout)
	}
	if !reflect.DeepEqual(cfg.AllowedHosts, []string{"a.example", "b.example"}) {
		t.Fatalf("allowed hosts = %v", cfg.AllowedHosts)
	}
}

func TestParseConfigReadsProcessEnvironment(t *testing.T) {
	t.Setenv("DB_TIMETABLE_CLIENT_ID", "process-id")
	t.Setenv("DB_TIMETABLE_LOG_FORMAT", "json")

	cfg, err := ParseConfig(flag.NewFlagSet("timetables", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.ClientID != "process-id" || cfg.LogFormat != "json" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestParseConfigRejectsUnknownFlag(t *testing.T) {
	fs := flag.NewFlagSet("timetables", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if _, err := ParseConfig(fs, []string{"-nope"}); err == nil {
		t.Fatal("expected error for unknown flag")
	}
}

func TestValidate(t *testing.T) {
	base := Config{ClientID: "id", ClientSecret: "secret", Transport: "stdio", Port: 8080}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing id", mutate: func(c *Config) { c.ClientID = "" }},
		{name: "missing secret", mutate: func(c *Config) { c.ClientSecret = " " }},
		{name: "unknown transport", mutate: func(c *Config) { c.Transport = "websocket" }},
		{name: "port out of range", mutate: func(c *Config) { c.Port = 70000 }},
		{name: "negative timeout", mutate: func(c *Config) { c.HTTPTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	cfg := base
	cfg.ClientID = ""
	if err := cfg.Validate(); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestRunRequiresCredentials(t *testing.T) {
	err := Run(context.Background(), Config{Transport: "stdio"}, nil)
	if !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := Config{
		ClientID:     "id",
		ClientSecret: "secret",
		Transport:    "sse",
		HTTPAddr:     "127.0.0.1",
		Port:         0,
		Endpoint:     "/sse",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, cfg, logger)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop after cancel")
	}
}
