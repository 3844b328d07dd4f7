package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Window.Width != 1024 {
		t.Errorf("expected default width 1024, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 768 {
		t.Errorf("expected default height 768, got %d", cfg.Window.Height)
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync enabled by default")
	}
	if cfg.Camera.Margin != 2.0 {
		t.Errorf("expected default camera margin 2.0, got %v", cfg.Camera.Margin)
	}
	if !cfg.Camera.AutoRotate {
		t.Error("expected auto-rotate enabled by default")
	}
	if cfg.Fetch.Timeout != 30*time.Second {
		t.Errorf("expected default fetch timeout 30s, got %v", cfg.Fetch.Timeout)
	}
	if cfg.Preview.Enabled {
		t.Error("expected preview disabled by default")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "stlview.yaml")

	content := `
window:
  width: 1920
  height: 1080
  fullscreen: true
camera:
  margin: 3.5
  auto_rotate: false
preview:
  enabled: true
  listen: "0.0.0.0:9000"
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 1080 {
		t.Errorf("expected height 1080, got %d", cfg.Window.Height)
	}
	if !cfg.Window.Fullscreen {
		t.Error("expected fullscreen true")
	}
	if cfg.Camera.Margin != 3.5 {
		t.Errorf("expected margin 3.5, got %v", cfg.Camera.Margin)
	}
	if cfg.Camera.AutoRotate {
		t.Error("expected auto_rotate false")
	}
	if !cfg.Preview.Enabled {
		t.Error("expected preview enabled")
	}
	if cfg.Preview.Listen != "0.0.0.0:9000" {
		t.Errorf("expected listen 0.0.0.0:9000, got %s", cfg.Preview.Listen)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFilePartial(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "stlview.yaml")

	// Only window width is set; everything else keeps defaults.
	content := "window:\n  width: 800\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Window.Width != 800 {
		t.Errorf("expected width 800, got %d", cfg.Window.Width)
	}
	if cfg.Window.Height != 768 {
		t.Errorf("expected default height 768, got %d", cfg.Window.Height)
	}
	if cfg.Camera.Margin != 2.0 {
		t.Errorf("expected default margin 2.0, got %v", cfg.Camera.Margin)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "stlview.yaml")

	if err := os.WriteFile(path, []byte("window: [not a map"), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestSaveTo(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "stlview.yaml")

	cfg := Default()
	cfg.Window.Width = 640
	cfg.Preview.Listen = "127.0.0.1:7777"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}

	if loaded.Window.Width != 640 {
		t.Errorf("expected width 640 after round trip, got %d", loaded.Window.Width)
	}
	if loaded.Preview.Listen != "127.0.0.1:7777" {
		t.Errorf("expected listen 127.0.0.1:7777 after round trip, got %s", loaded.Preview.Listen)
	}
}
