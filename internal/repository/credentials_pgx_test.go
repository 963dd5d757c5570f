package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octobees/contact-enricher/internal/entity"
)

var credentialRowColumns = []string{"id", "email", "password_hash", "apollo_key_enc", "notion_token_enc", "notion_database_id_enc", "ai_key_enc", "ai_provider", "created_at", "last_login"}

func newMockRepo(t *testing.T) (*PGXCredentialRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPGXCredentialRepository(mock), mock
}

func TestPGXCredentialRepository_FindByEmail(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.MustParse("aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa")
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	aiKey := "enc-ai"

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT ` + credentialColumns + ` FROM credentials WHERE email = $1`)).
		WithArgs("user@example.com").
		WillReturnRows(pgxmock.NewRows(credentialRowColumns).
			AddRow(id, "user@example.com", "hash", "enc-apollo", "enc-notion", "enc-db", &aiKey, "gemini", created, (*time.Time)(nil)))

	cred, err := repo.FindByEmail(context.Background(), "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, id, cred.ID)
	assert.Equal(t, "enc-apollo", cred.EncryptedApolloKey)
	assert.Equal(t, "gemini", cred.AIProvider)
	require.NotNil(t, cred.EncryptedAIKey)
	assert.Equal(t, "enc-ai", *cred.EncryptedAIKey)
	assert.Nil(t, cred.LastLogin)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM credentials WHERE email = $1`)).
		WithArgs("missing@example.com").
		WillReturnError(pgx.ErrNoRows)
	_, err = repo.FindByEmail(context.Background(), "missing@example.com")
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGXCredentialRepository_Create(t *testing.T) {
	repo, mock := newMockRepo(t)
	cred := &entity.Credential{
		ID:                        uuid.New(),
		Email:                     "user@example.com",
		PasswordHash:              "hash",
		EncryptedApolloKey:        "a",
		EncryptedNotionToken:      "n",
		EncryptedNotionDatabaseID: "d",
		AIProvider:                "openai",
		CreatedAt:                 time.Now(),
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credentials")).
		WithArgs(cred.ID, cred.Email, cred.PasswordHash, "a", "n", "d", cred.EncryptedAIKey, "openai", cred.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, repo.Create(context.Background(), cred))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO credentials")).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"credentials_email_key\""})
	err := repo.Create(context.Background(), cred)
	assert.ErrorIs(t, err, ErrEmailDuplicate)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGXCredentialRepository_UpdateKeys(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	apollo, notion := "enc-apollo-2", "enc-notion-2"

	mock.ExpectExec(regexp.QuoteMeta("UPDATE credentials SET apollo_key_enc = $1, notion_token_enc = $2 WHERE id = $3")).
		WithArgs(apollo, notion, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateKeys(context.Background(), id, KeyUpdate{EncryptedApolloKey: &apollo, EncryptedNotionToken: &notion}))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE credentials SET")).
		WithArgs(apollo, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	err := repo.UpdateKeys(context.Background(), id, KeyUpdate{EncryptedApolloKey: &apollo})
	assert.ErrorIs(t, err, ErrCredentialNotFound)

	// The id is bound as a uuid.UUID, the same type every other statement sends.
	ai := "enc-ai"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE credentials SET ai_key_enc = $1 WHERE id = $2")).
		WithArgs(ai, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdateKeys(context.Background(), id, KeyUpdate{EncryptedAIKey: &ai}))

	// Nothing to change issues no statement.
	require.NoError(t, repo.UpdateKeys(context.Background(), id, KeyUpdate{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGXCredentialRepository_TouchLoginAndDelete(t *testing.T) {
	repo, mock := newMockRepo(t)
	id := uuid.New()
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE credentials SET last_login = $1 WHERE id = $2")).
		WithArgs(at, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.TouchLogin(context.Background(), id, at))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE credentials SET password_hash = $1 WHERE id = $2")).
		WithArgs("new-hash", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	require.NoError(t, repo.UpdatePassword(context.Background(), id, "new-hash"))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM credentials WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), id), ErrCredentialNotFound)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM credentials WHERE id = $1")).
		WithArgs(id).
		WillReturnError(errors.New("connection reset"))
	err := repo.Delete(context.Background(), id)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentialNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
