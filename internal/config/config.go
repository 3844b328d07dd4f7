// Package config handles viewer configuration loading and management.
package config

import "time"

// Config holds all viewer settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Camera  CameraConfig  `yaml:"camera"`
	Fetch   FetchConfig   `yaml:"fetch"`
	Preview PreviewConfig `yaml:"preview"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// CameraConfig holds camera fitting and interaction settings.
type CameraConfig struct {
	// Margin is the distance factor applied to the largest mesh
	// dimension when fitting the camera.
	Margin float32 `yaml:"margin"`
	// AutoRotate spins the model continuously when true.
	AutoRotate bool `yaml:"auto_rotate"`
	// RotateSpeed is the auto-rotation rate in radians per second.
	RotateSpeed float32 `yaml:"rotate_speed"`
}

// FetchConfig holds mesh download settings.
type FetchConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	// MaxBytes caps the size of a downloaded mesh payload.
	MaxBytes int64 `yaml:"max_bytes"`
}

// PreviewConfig holds the browser preview server settings.
type PreviewConfig struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
	// FrameWidth is the width frames are downscaled to before
	// broadcasting; height follows the aspect ratio.
	FrameWidth int `yaml:"frame_width"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:      1024,
			Height:     768,
			Fullscreen: false,
			VSync:      true,
		},
		Camera: CameraConfig{
			Margin:      2.0,
			AutoRotate:  true,
			RotateSpeed: 0.8,
		},
		Fetch: FetchConfig{
			Timeout:  30 * time.Second,
			MaxBytes: 256 << 20,
		},
		Preview: PreviewConfig{
			Enabled:    false,
			Listen:     "127.0.0.1:8090",
			FrameWidth: 480,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
