package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// chdir moves into a fresh directory so no stray livepreview.yaml or .env is picked up.
func chdir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir failed: %v", err)
	}
	t.Cleanup(func() { os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdir(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "8080" || cfg.AdminPort != "8081" {
		t.Errorf("ports = %s/%s, want 8080/8081", cfg.Port, cfg.AdminPort)
	}
	if cfg.BlockID != "live_preview" {
		t.Errorf("BlockID = %q", cfg.BlockID)
	}
	if cfg.DBPath != filepath.Join("data", "livepreview.db") {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.FormCacheTTL != 6*time.Hour {
		t.Errorf("FormCacheTTL = %v, want 6h", cfg.FormCacheTTL)
	}
	if cfg.ServerSideLinks {
		t.Error("ServerSideLinks should default to false")
	}
	if cfg.BlockConfigDir() != filepath.Join("data", "blocks") {
		t.Errorf("BlockConfigDir = %q", cfg.BlockConfigDir())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := chdir(t)
	yaml := "port: \"9000\"\nlog_level: debug\nlinks:\n  server_side: true\nform_cache_ttl: 30m\n"
	if err := os.WriteFile(filepath.Join(dir, "livepreview.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	t.Setenv("LIVEPREVIEW_PORT", "9100")
	t.Setenv("LIVEPREVIEW_DATA_DIR", "/srv/lp")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("Port = %q, want env override 9100", cfg.Port)
	}
	if cfg.DataDir != "/srv/lp" || cfg.DBPath != filepath.Join("/srv/lp", "livepreview.db") {
		t.Errorf("DataDir/DBPath = %q/%q", cfg.DataDir, cfg.DBPath)
	}
	if !cfg.ServerSideLinks || cfg.FormCacheTTL != 30*time.Minute || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v, want values from livepreview.yaml", cfg)
	}
}

func TestLoadMissingNamedFile(t *testing.T) {
	chdir(t)
	if _, err := Load("nope.yaml"); err == nil {
		t.Error("expected an error for a missing named config file")
	}
}

func TestLoadInvalidLevel(t *testing.T) {
	chdir(t)
	t.Setenv("LIVEPREVIEW_LOG_LEVEL", "chatty")
	if _, err := Load(""); err == nil {
		t.Error("expected an error for an invalid log level")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn")
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "key=value") {
		t.Errorf("log output = %q", out)
	}
}
