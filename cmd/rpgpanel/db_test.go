package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"rpgpanel/internal/config"
	"rpgpanel/internal/store"
)

func TestOpenStoreSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := "sqlite://" + filepath.Join(t.TempDir(), "state", "session.db")

	db, err := openStore(ctx, dsn)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer db.Close(ctx)

	if _, err := db.GetCredential(ctx); err != store.ErrNoCredential {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
}

func TestOpenStoreRejectsUnknownScheme(t *testing.T) {
	if _, err := openStore(context.Background(), "mysql://localhost/rpg"); err == nil {
		t.Fatalf("expected error for unsupported dsn")
	}
}

func TestTokenSource(t *testing.T) {
	ctx := context.Background()
	db, err := openStore(ctx, "sqlite://"+filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer db.Close(ctx)

	cfg := &config.ProjectConfig{}
	tokens := tokenSource(cfg, db)

	token, err := tokens(ctx)
	if err != nil || token != "" {
		t.Fatalf("expected empty token before login, got %q (%v)", token, err)
	}

	if err := db.SaveCredential(ctx, store.Credential{Token: "stored", Username: "steve"}); err != nil {
		t.Fatalf("save credential: %v", err)
	}
	token, err = tokens(ctx)
	if err != nil || token != "stored" {
		t.Fatalf("expected stored token, got %q (%v)", token, err)
	}

	cfg.API.Token = "from-env"
	token, err = tokenSource(cfg, db)(ctx)
	if err != nil || token != "from-env" {
		t.Fatalf("expected env token to win, got %q (%v)", token, err)
	}
}

func TestCurrentUser(t *testing.T) {
	ctx := context.Background()
	db, err := openStore(ctx, "sqlite://"+filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer db.Close(ctx)

	cfg := &config.ProjectConfig{}
	if user, err := currentUser(ctx, cfg, db); err != nil || user != "" {
		t.Fatalf("expected no user before login, got %q (%v)", user, err)
	}

	if err := db.SaveCredential(ctx, store.Credential{Token: "opaque", Username: "steve"}); err != nil {
		t.Fatalf("save credential: %v", err)
	}
	if user, err := currentUser(ctx, cfg, db); err != nil || user != "steve" {
		t.Fatalf("expected stored username, got %q (%v)", user, err)
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7", "username": "alex"}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	if err := db.SaveCredential(ctx, store.Credential{Token: token}); err != nil {
		t.Fatalf("save credential: %v", err)
	}
	if user, err := currentUser(ctx, cfg, db); err != nil || user != "alex" {
		t.Fatalf("expected name from token claims, got %q (%v)", user, err)
	}

	cfg.API.Token = "opaque-env-token"
	if user, err := currentUser(ctx, cfg, db); err != nil || user != "" {
		t.Fatalf("expected env token to override the stored login, got %q (%v)", user, err)
	}
}

func TestRunInit(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := runInit("realm", "minecraft-rpg", "http://localhost:8080"); err != nil {
		t.Fatalf("init: %v", err)
	}

	cfg, err := config.LoadProjectConfig(projectFile)
	if err != nil {
		t.Fatalf("load project config: %v", err)
	}
	if cfg.Project != "realm" || cfg.API.BaseURL != "http://localhost:8080" {
		t.Fatalf("unexpected config: %#v", cfg)
	}
	if _, err := config.LoadSchema(cfg.Schema); err != nil {
		t.Fatalf("load schema: %v", err)
	}

	info, err := os.Stat(projectFile)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}

	if err := runInit("realm", "minecraft-rpg", "http://localhost:8080"); err == nil {
		t.Fatalf("expected error when files exist")
	}
}

func TestRunInitUnknownTemplate(t *testing.T) {
	t.Chdir(t.TempDir())

	if err := runInit("realm", "space-opera", "http://localhost:8080"); err == nil {
		t.Fatalf("expected error for unknown template")
	}
	if _, err := os.Stat(projectFile); !os.IsNotExist(err) {
		t.Fatalf("expected no config written, got %v", err)
	}
}
