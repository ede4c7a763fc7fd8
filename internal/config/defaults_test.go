package config

import (
	"testing"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/fs"
)

const defaultsJSON = `{
	"xmodURL": "https://acme.xmatters.com",
	"user": "restore-svc",
	"password": "from-file",
	"baseName": "acme",
	"outDirectory": "/captures",
	"logFilename": "restore-run",
	"timeStr": "20260830-1200",
	"instance": "prod",
	"verbosity": 2
}`

func TestApplyDefaultsFillsUnsetFields(t *testing.T) {
	fs.SetFS(fs.SetupTestDir(map[string]string{
		"/etc/xmrestore/defaults.json": defaultsJSON,
	}))
	defer fs.ResetFS()

	cfg := New()
	if err := cfg.ApplyDefaults("/etc/xmrestore/defaults.json", true); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}

	if cfg.XmodURL != "https://acme.xmatters.com" {
		t.Errorf("XmodURL = %q", cfg.XmodURL)
	}
	if cfg.BaseName != "acme" || cfg.TimeStr != "20260830-1200" {
		t.Errorf("file naming fields not applied: base=%q time=%q", cfg.BaseName, cfg.TimeStr)
	}
	if cfg.Instance != InstanceProd {
		t.Errorf("Instance = %q, want prod", cfg.Instance)
	}
	if cfg.Verbosity != 2 {
		t.Errorf("Verbosity = %d, want 2", cfg.Verbosity)
	}
	if cfg.LogFilename != "restore-run" {
		t.Errorf("LogFilename = %q", cfg.LogFilename)
	}
}

func TestApplyDefaultsFlagsWin(t *testing.T) {
	fs.SetFS(fs.SetupTestDir(map[string]string{
		"defaults.json": defaultsJSON,
	}))
	defer fs.ResetFS()

	cfg := New()
	cfg.XmodURL = "https://other.xmatters.com"
	cfg.Password = "from-flag"
	if err := cfg.ApplyDefaults("defaults.json", false); err != nil {
		t.Fatalf("ApplyDefaults: %v", err)
	}

	if cfg.XmodURL != "https://other.xmatters.com" {
		t.Errorf("flag value overridden: %q", cfg.XmodURL)
	}
	if cfg.Password != "from-flag" {
		t.Errorf("flag password overridden: %q", cfg.Password)
	}
	// unset fields still come from the file
	if cfg.User != "restore-svc" {
		t.Errorf("User = %q, want restore-svc", cfg.User)
	}
}

func TestApplyDefaultsMissingFile(t *testing.T) {
	fs.SetFS(fs.NewMemMapFs())
	defer fs.ResetFS()

	cfg := New()
	if err := cfg.ApplyDefaults("defaults.json", false); err != nil {
		t.Errorf("implicit missing defaults file should not error: %v", err)
	}
	if err := cfg.ApplyDefaults("/nope/defaults.json", true); err == nil {
		t.Error("explicit missing defaults file should error")
	}
}

func TestApplyDefaultsBadJSON(t *testing.T) {
	fs.SetFS(fs.SetupTestDir(map[string]string{
		"defaults.json": `{"xmodURL": }`,
	}))
	defer fs.ResetFS()

	cfg := New()
	if err := cfg.ApplyDefaults("defaults.json", true); err == nil {
		t.Error("unparseable defaults file should error")
	}
}
