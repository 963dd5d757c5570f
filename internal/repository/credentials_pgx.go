package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/contact-enricher/internal/entity"
)

const uniqueViolation = "23505"

// pgxPool is the subset of *pgxpool.Pool used by the repository.
type pgxPool interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

// PGXCredentialRepository implements CredentialRepository on PostgreSQL.
type PGXCredentialRepository struct {
	pool pgxPool
	psql sq.StatementBuilderType
}

// NewPGXCredentialRepository wires a pgx backed repository.
func NewPGXCredentialRepository(pool pgxPool) *PGXCredentialRepository {
	return &PGXCredentialRepository{pool: pool, psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

// Create inserts a new account row.
func (r *PGXCredentialRepository) Create(ctx context.Context, c *entity.Credential) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO credentials (id, email, password_hash, apollo_key_enc, notion_token_enc, notion_database_id_enc, ai_key_enc, ai_provider, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, c.ID, c.Email, c.PasswordHash, c.EncryptedApolloKey, c.EncryptedNotionToken, c.EncryptedNotionDatabaseID, c.EncryptedAIKey, c.AIProvider, c.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %v", ErrEmailDuplicate, pgErr)
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// FindByEmail fetches an account by lowercased email.
func (r *PGXCredentialRepository) FindByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE email = $1`, email)
	c, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("query credential by email: %w", err)
	}
	return c, nil
}

// FindByID fetches an account by id.
func (r *PGXCredentialRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Credential, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = $1`, id)
	c, err := scanCredential(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("query credential by id: %w", err)
	}
	return c, nil
}

// UpdateKeys replaces only the supplied encrypted keys.
func (r *PGXCredentialRepository) UpdateKeys(ctx context.Context, id uuid.UUID, update KeyUpdate) error {
	if update.Empty() {
		return nil
	}
	query, args, err := r.psql.Update("credentials").
		SetMap(keyUpdateColumns(update)).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return fmt.Errorf("build key update: %w", err)
	}
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update credential keys: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *PGXCredentialRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE credentials SET password_hash = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// TouchLogin records a successful login.
func (r *PGXCredentialRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	cmd, err := r.pool.Exec(ctx, `UPDATE credentials SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}

// Delete removes an account by id.
func (r *PGXCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM credentials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCredentialNotFound
	}
	return nil
}
