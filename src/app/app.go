// Package app wires the core components together for the CLI front end.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kaiwa-ai/kaiwa/src/catalog"
	"github.com/kaiwa-ai/kaiwa/src/config"
	"github.com/kaiwa-ai/kaiwa/src/convstore"
	"github.com/kaiwa-ai/kaiwa/src/entitlement"
	"github.com/kaiwa-ai/kaiwa/src/gateway"
	"github.com/kaiwa-ai/kaiwa/src/keyval"
	"github.com/kaiwa-ai/kaiwa/src/ledger"
	"github.com/kaiwa-ai/kaiwa/src/profile"
)

// App holds the initialized core services.
type App struct {
	KV            *keyval.SQLiteStore
	Catalog       *catalog.Catalog
	Profiles      *profile.Manager
	Profile       *profile.Profile
	Ledger        *ledger.Ledger
	Evaluator     *entitlement.Evaluator
	Conversations *convstore.Store
	Credentials   *gateway.Credentials
	Gateway       *gateway.Gateway
	Logger        *slog.Logger
	Config        *config.Config
}

// AppConfig holds configuration for creating a new App instance.
type AppConfig struct {
	Config       *config.Config
	DatabasePath string
	Logger       *slog.Logger
}

// New creates a new App instance with all services initialized. The user
// profile is created on first run.
func New(ctx context.Context, cfg AppConfig) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = config.Default()
	}

	dbPath := cfg.DatabasePath
	if dbPath == "" {
		dbPath = config.GetDefaultStoragePaths().DatabasePath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	kv, err := keyval.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	cat := catalog.Default()

	profiles := profile.NewManager(kv, logger)
	prof, err := profiles.Ensure(ctx)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to initialize profile: %w", err)
	}

	led := ledger.New(kv, cat, logger)
	eval := entitlement.New(cat, led, logger)
	convs := convstore.NewStore(kv, logger)
	creds := gateway.NewCredentials(kv)

	apiKey := appCfg.APIKey
	if apiKey == "" {
		apiKey, err = creds.APIKey(ctx)
		if err != nil {
			kv.Close()
			return nil, err
		}
	}

	client := gateway.NewClient(gateway.ClientConfig{
		APIKey:   apiKey,
		BaseURL:  appCfg.BaseURL,
		Logger:   logger,
		SiteURL:  appCfg.SiteURL,
		SiteName: appCfg.SiteName,
	})

	gw := gateway.New(gateway.Config{
		Catalog:         cat,
		Evaluator:       eval,
		Ledger:          led,
		Client:          client,
		Logger:          logger,
		ContextMessages: appCfg.ContextMessages,
		MaxTokens:       appCfg.MaxTokens,
	})

	return &App{
		KV:            kv,
		Catalog:       cat,
		Profiles:      profiles,
		Profile:       prof,
		Ledger:        led,
		Evaluator:     eval,
		Conversations: convs,
		Credentials:   creds,
		Gateway:       gw,
		Logger:        logger,
		Config:        appCfg,
	}, nil
}

// Close closes all resources held by the app.
func (a *App) Close() error {
	if a.KV != nil {
		return a.KV.Close()
	}
	return nil
}
