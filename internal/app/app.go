// Package app assembles the long-lived dependencies shared by the server and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/octobees/contact-enricher/internal/config"
	"github.com/octobees/contact-enricher/internal/database"
	"github.com/octobees/contact-enricher/internal/entity"
	"github.com/octobees/contact-enricher/internal/repository"
	"github.com/octobees/contact-enricher/internal/service/session"
	"github.com/octobees/contact-enricher/internal/service/upsert"
	"github.com/octobees/contact-enricher/internal/service/vault"
)

// App holds the credential store, the vault and the session factory.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Vault    *vault.Vault
	Sessions *session.Factory

	closers []func() error
}

// Options toggles the parts a caller needs.
type Options struct {
	// SkipStore leaves Vault nil for commands that only use env credentials.
	SkipStore bool
}

// New opens the credential database, applies migrations and wires the session factory.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	locker, err := a.openLocker(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := SessionSettings(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Sessions = session.NewFactory(settings, locker, logger)

	if opts.SkipStore {
		return a, nil
	}
	if err := a.openVault(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

// SessionSettings maps configuration onto session knobs.
func SessionSettings(cfg *config.Config) (session.Settings, error) {
	policy, err := entity.ParseFallbackPolicy(cfg.Batch.FallbackPolicy)
	if err != nil {
		return session.Settings{}, err
	}
	return session.Settings{
		ProviderBaseURL:  cfg.Provider.BaseURL,
		ProviderTimeout:  cfg.Provider.Timeout,
		MaxAttempts:      cfg.Provider.MaxAttempts,
		FallbackPolicy:   policy,
		SkipExisting:     cfg.Batch.SkipExisting,
		Workers:          cfg.Batch.Workers,
		RowDelay:         cfg.Batch.RowDelay,
		RowsPerMinute:    cfg.Batch.RowsPerMinute,
		PeoplePerCompany: cfg.Batch.PeoplePerCompany,
		PhoneRegion:      cfg.Contacts.PhoneRegion,
		ProfileDomains:   cfg.Contacts.ProfileDomains,
	}, nil
}

// Close releases every resource opened by New in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openLocker(ctx context.Context) (upsert.Locker, error) {
	if a.Config.RedisURL == "" {
		return upsert.NewMemoryLocker(), nil
	}
	locker, err := upsert.NewRedisLockerFromURL(ctx, a.Config.RedisURL, upsert.WithLockLogger(a.Logger))
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, locker.Close)
	a.Logger.Info("using redis for contact locks")
	return locker, nil
}

func (a *App) openVault(ctx context.Context) error {
	if a.Config.EncryptionKey == "" {
		return errors.New("ENCRYPTION_KEY is required; generate one with `enricher keygen`")
	}
	cipher, err := vault.NewCipher(a.Config.EncryptionKey)
	if err != nil {
		return fmt.Errorf("invalid ENCRYPTION_KEY: %w", err)
	}

	repo, err := a.openRepository(ctx)
	if err != nil {
		return err
	}
	a.Vault = vault.New(repo, vault.NewHasher(a.Config.BcryptCost), cipher)
	return nil
}

func (a *App) openRepository(ctx context.Context) (repository.CredentialRepository, error) {
	dialect := database.DialectOf(a.Config.DatabaseURL)
	if dialect == database.DialectSQLite {
		db, err := database.OpenSQLite(ctx, a.Config.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := database.Migrate(ctx, db, dialect, a.Logger); err != nil {
			return nil, err
		}
		return repository.NewSQLiteCredentialRepository(db), nil
	}

	pool, err := database.Connect(ctx, a.Config.DatabaseURL)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() error { pool.Close(); return nil })

	if err := a.migratePool(ctx, pool, dialect); err != nil {
		return nil, err
	}
	return repository.NewPGXCredentialRepository(pool), nil
}

// migratePool runs migrations through a database/sql view of pool. The view is closed
// before the pool on shutdown.
func (a *App) migratePool(ctx context.Context, pool *pgxpool.Pool, dialect database.Dialect) error {
	db := stdlib.OpenDBFromPool(pool)
	a.closers = append(a.closers, db.Close)
	return database.Migrate(ctx, db, dialect, a.Logger)
}

// EnvCredentials builds provider credentials from configuration for single-operator runs.
func EnvCredentials(cfg *config.Config) entity.ProviderCredentials {
	creds := entity.ProviderCredentials{
		ApolloKey:        cfg.Provider.APIKey,
		NotionToken:      cfg.Workspace.Token,
		NotionDatabaseID: cfg.Workspace.DatabaseID,
		AIProvider:       cfg.AI.Provider,
	}
	switch cfg.AI.Provider {
	case "gemini":
		creds.AIKey = cfg.AI.GeminiKey
	default:
		creds.AIKey = cfg.AI.OpenAIKey
	}
	return creds
}
