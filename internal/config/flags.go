package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagAutoRotate = flag.Bool("autorotate", false, "Start with auto-rotation enabled")
	flagNoRotate   = flag.Bool("norotate", false, "Start with auto-rotation disabled")
	flagListen     = flag.String("listen", "", "Enable the browser preview server on this address")
	flagSaveConfig = flag.Bool("save-config", false, "Write the effective config to the user config dir and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// SaveRequested reports whether --save-config was given.
func SaveRequested() bool {
	return *flagSaveConfig
}

// MeshURL returns the positional mesh URL argument, if any.
func MeshURL() string {
	return flag.Arg(0)
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagFullscreen {
		cfg.Window.Fullscreen = true
	}
	if *flagAutoRotate {
		cfg.Camera.AutoRotate = true
	}
	if *flagNoRotate {
		cfg.Camera.AutoRotate = false
	}
	if *flagListen != "" {
		cfg.Preview.Enabled = true
		cfg.Preview.Listen = *flagListen
	}
}
