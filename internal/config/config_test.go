package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hashicorp/go-multierror"
)

func validConfig() *Config {
	return &Config{
		XmodURL:      "https://acme.xmatters.com",
		User:         "restore-svc",
		Password:     "secret",
		Instance:     InstanceNonProd,
		OutDirectory: "/captures",
		BaseName:     "acme",
		TimeStr:      "20260830-1200",
		LogFilename:  "restore",
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config should pass: %v", err)
	}
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := &Config{Instance: "staging"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}

	var merr *multierror.Error
	if !asMultierror(err, &merr) {
		t.Fatalf("expected *multierror.Error, got %T", err)
	}
	// url, user, password, bad instance, base name, time string
	if len(merr.Errors) < 5 {
		t.Errorf("expected at least 5 problems, got %d: %v", len(merr.Errors), merr)
	}
}

func asMultierror(err error, target **multierror.Error) bool {
	m, ok := err.(*multierror.Error)
	if ok {
		*target = m
	}
	return ok
}

func TestValidateBadURL(t *testing.T) {
	cfg := validConfig()
	cfg.XmodURL = "acme.xmatters.com"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "http") {
		t.Errorf("expected URL scheme error, got %v", err)
	}
}

func TestDataFileNaming(t *testing.T) {
	cfg := validConfig()

	tests := []struct {
		kind string
		want string
	}{
		{"sites", "acme.np.sites.20260830-1200.json"},
		{"users", "acme.np.users.20260830-1200.json"},
		{"groups", "acme.np.groups.20260830-1200.json"},
	}
	for _, tt := range tests {
		got := cfg.DataFile(tt.kind)
		if got != filepath.Join("/captures", tt.want) {
			t.Errorf("DataFile(%q) = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestLogFileNaming(t *testing.T) {
	cfg := validConfig()
	now := time.Date(2026, 8, 30, 14, 5, 0, 0, time.UTC)

	got := cfg.LogFile(now)
	want := filepath.Join("/captures", "acme.np.restore.20260830-1405.log")
	if got != want {
		t.Errorf("LogFile = %q, want %q", got, want)
	}
}

func TestLogLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      string
	}{
		{0, "error"},
		{1, "warn"},
		{2, "info"},
		{3, "debug"},
		{9, "debug"},
	}
	for _, tt := range tests {
		cfg := &Config{Verbosity: tt.verbosity}
		if got := cfg.LogLevel(); got != tt.want {
			t.Errorf("LogLevel(verbosity=%d) = %q, want %q", tt.verbosity, got, tt.want)
		}
	}
}

func TestIsProd(t *testing.T) {
	cfg := validConfig()
	if cfg.IsProd() {
		t.Error("np instance should not be prod")
	}
	cfg.Instance = InstanceProd
	if !cfg.IsProd() {
		t.Error("prod instance should be prod")
	}
}
