package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/octobees/contact-enricher/internal/entity"
)

// SQLiteCredentialRepository implements CredentialRepository on a local SQLite file.
type SQLiteCredentialRepository struct {
	db   *sql.DB
	stmt sq.StatementBuilderType
}

// NewSQLiteCredentialRepository wraps an open database that has been migrated.
func NewSQLiteCredentialRepository(db *sql.DB) *SQLiteCredentialRepository {
	return &SQLiteCredentialRepository{db: db, stmt: sq.StatementBuilder.PlaceholderFormat(sq.Question)}
}

// Create inserts a new account row.
func (r *SQLiteCredentialRepository) Create(ctx context.Context, c *entity.Credential) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO credentials (id, email, password_hash, apollo_key_enc, notion_token_enc, notion_database_id_enc, ai_key_enc, ai_provider, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `, c.ID.String(), c.Email, c.PasswordHash, c.EncryptedApolloKey, c.EncryptedNotionToken, c.EncryptedNotionDatabaseID, c.EncryptedAIKey, c.AIProvider, c.CreatedAt.UTC())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %v", ErrEmailDuplicate, sqliteErr)
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// FindByEmail fetches an account by lowercased email.
func (r *SQLiteCredentialRepository) FindByEmail(ctx context.Context, email string) (*entity.Credential, error) {
	return r.findOne(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE email = ?`, email)
}

// FindByID fetches an account by id.
func (r *SQLiteCredentialRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Credential, error) {
	return r.findOne(ctx, `SELECT `+credentialColumns+` FROM credentials WHERE id = ?`, id.String())
}

func (r *SQLiteCredentialRepository) findOne(ctx context.Context, query string, arg any) (*entity.Credential, error) {
	c, err := scanCredential(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCredentialNotFound
		}
		return nil, fmt.Errorf("query credential: %w", err)
	}
	return c, nil
}

// UpdateKeys replaces only the supplied encrypted keys.
func (r *SQLiteCredentialRepository) UpdateKeys(ctx context.Context, id uuid.UUID, update KeyUpdate) error {
	if update.Empty() {
		return nil
	}
	query, args, err := r.stmt.Update("credentials").
		SetMap(keyUpdateColumns(update)).
		Where(sq.Eq{"id": id.String()}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build key update: %w", err)
	}
	return r.execOne(ctx, "update credential keys", query, args...)
}

// UpdatePassword replaces the stored bcrypt hash.
func (r *SQLiteCredentialRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.execOne(ctx, "update password", `UPDATE credentials SET password_hash = ? WHERE id = ?`, passwordHash, id.String())
}

// TouchLogin records a successful login.
func (r *SQLiteCredentialRepository) TouchLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.execOne(ctx, "update last login", `UPDATE credentials SET last_login = ? WHERE id = ?`, at.UTC(), id.String())
}

// Delete removes an account by id.
func (r *SQLiteCredentialRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.execOne(ctx, "delete credential", `DELETE FROM credentials WHERE id = ?`, id.String())
}

func (r *SQLiteCredentialRepository) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return ErrCredentialNotFound
	}
	return nil
}
