package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"rpgpanel/internal/client"
	"rpgpanel/internal/config"
	"rpgpanel/internal/notify"
	"rpgpanel/internal/panel"
	"rpgpanel/internal/store"
	"rpgpanel/internal/store/postgres"
	"rpgpanel/internal/store/sqlite"
	"rpgpanel/internal/telemetry"
)

const projectFile = "rpgpanel.yaml"

// openStore opens the session store named by dsn and makes sure its tables
// exist.
func openStore(ctx context.Context, dsn string) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		db, err = sqlite.New(ctx, dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		db, err = postgres.New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported session dsn: %s", dsn)
	}
	if err != nil {
		return nil, err
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}

func loadProject() (*config.ProjectConfig, *config.Schema, error) {
	cfg, err := config.LoadProjectConfig(projectFile)
	if err != nil {
		return nil, nil, err
	}
	schema, err := config.LoadSchema(cfg.Schema)
	if err != nil {
		return nil, nil, err
	}
	return cfg, schema, nil
}

// app holds everything a panel command needs.
type app struct {
	cfg      *config.ProjectConfig
	schema   *config.Schema
	db       store.Store
	notifier *notify.Notifier
	registry *panel.Registry
	username string
	shutdown func(context.Context) error
}

func openApp(ctx context.Context) (*app, error) {
	cfg, schema, err := loadProject()
	if err != nil {
		return nil, err
	}

	db, err := openStore(ctx, cfg.Session.DSN)
	if err != nil {
		return nil, err
	}

	shutdown, err := telemetry.Setup(ctx, "rpgpanel", version)
	if err != nil {
		db.Close(ctx)
		return nil, err
	}

	username, err := currentUser(ctx, cfg, db)
	if err != nil {
		_ = shutdown(ctx)
		db.Close(ctx)
		return nil, err
	}

	logger := log.New(os.Stderr, "rpgpanel: ", log.LstdFlags)
	notifier := notify.New(notify.DefaultCapacity, logger)
	api := client.New(cfg.API.BaseURL, cfg.API.Timeout, tokenSource(cfg, db))

	return &app{
		cfg:      cfg,
		schema:   schema,
		db:       db,
		notifier: notifier,
		registry: panel.NewRegistry(schema, api, notifier),
		username: username,
		shutdown: shutdown,
	}, nil
}

func (a *app) Close(ctx context.Context) {
	a.registry.Close()
	if err := a.shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "telemetry shutdown: %v\n", err)
	}
	a.db.Close(ctx)
}

// tokenSource prefers RPGPANEL_TOKEN and falls back to the stored login.
func tokenSource(cfg *config.ProjectConfig, db store.Store) client.TokenSource {
	if cfg.API.Token != "" {
		return client.StaticToken(cfg.API.Token)
	}
	return func(ctx context.Context) (string, error) {
		cred, err := db.GetCredential(ctx)
		if errors.Is(err, store.ErrNoCredential) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		return cred.Token, nil
	}
}

// currentUser names whoever requests go out as: the RPGPANEL_TOKEN claims
// when that is set, otherwise the stored login. It is empty when signed out
// or when the token carries no name.
func currentUser(ctx context.Context, cfg *config.ProjectConfig, db store.Store) (string, error) {
	if cfg.API.Token != "" {
		return tokenUser(cfg.API.Token), nil
	}
	cred, err := db.GetCredential(ctx)
	if errors.Is(err, store.ErrNoCredential) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if cred.Username != "" {
		return cred.Username, nil
	}
	return tokenUser(cred.Token), nil
}

func tokenUser(token string) string {
	identity, err := client.ReadIdentity(token)
	if err != nil {
		return ""
	}
	return identity.DisplayName()
}
