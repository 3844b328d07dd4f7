// Package main is the entry point for the stlview mesh viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/stlview/internal/app"
	"github.com/Faultbox/stlview/internal/config"
	"github.com/Faultbox/stlview/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if config.SaveRequested() {
		if err := cfg.Save(); err != nil {
			fmt.Fprintf(os.Stderr, "Saving config failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Config saved")
		return
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== stlview ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	url := config.MeshURL()
	if url == "" {
		logger.Info("no mesh URL given, starting empty (press R after loading one)")
	}

	// Create and run the viewer
	a, err := app.New(cfg, url)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer a.Close()

	if err := a.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("viewer closed normally")
}
