package main

import (
	"context"

	"github.com/spf13/afero"

	"github.com/kaiwa-ai/kaiwa/src/app"
	"github.com/kaiwa-ai/kaiwa/src/config"
)

// openApp builds the App from config file, flags, and defaults.
func openApp(ctx context.Context, cli *CLI) (*app.App, error) {
	paths := config.GetDefaultStoragePaths()

	cfg, err := config.Load(afero.NewOsFs(), paths.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cli.APIKey != "" {
		cfg.APIKey = cli.APIKey
	}
	if cli.BaseURL != "" {
		cfg.BaseURL = cli.BaseURL
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}

	return app.New(ctx, app.AppConfig{
		Config:       cfg,
		DatabasePath: cli.DBPath,
		Logger:       createCLILogger(cfg.LogLevel),
	})
}
