package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubdesk/internal/member/models"
	"clubdesk/pkg/platform/sentinel"
)

func newMockStore(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db), mock
}

var memberRowColumns = []string{
	"user_id", "email", "phone", "username", "fullname", "password_hash", "user_type",
	"is_subscribed_to_newsletter", "has_fees_paid", "fee_expiration_date", "birthdate",
	"avatar", "reset_password_token", "reset_password_expires", "created_at", "updated_at",
}

func TestPostgresCreateMapsUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := store.Create(context.Background(), &models.Member{Email: "a@clube.pt", PasswordHash: "hash"})
	assert.ErrorIs(t, err, sentinel.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateReturnsGeneratedFields(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "created_at", "updated_at"}).
			AddRow(int64(12), now, now))

	m := &models.Member{Email: "a@clube.pt", PasswordHash: "hash", Role: "player"}
	require.NoError(t, store.Create(context.Background(), m))
	assert.Equal(t, int64(12), m.ID)
	assert.Equal(t, now, m.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByEmailScansNullableFields(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()
	birth := now.AddDate(-30, 0, 0)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE lower\(email\)`).
		WithArgs("a@clube.pt").
		WillReturnRows(sqlmock.NewRows(memberRowColumns).
			AddRow(int64(7), "a@clube.pt", "", "", "Membro Teste", "hash", "player",
				false, true, nil, birth, "", "", nil, now, now))

	m, err := store.FindByEmail(context.Background(), "a@clube.pt")
	require.NoError(t, err)
	assert.Equal(t, int64(7), m.ID)
	assert.Nil(t, m.FeeExpiration)
	require.NotNil(t, m.Birthdate)
	assert.True(t, birth.Equal(*m.Birthdate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresFindByIDNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE user_id`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(memberRowColumns))

	_, err := store.FindByID(context.Background(), 404)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresUpdateUnknownMember(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`UPDATE users`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Update(context.Background(), &models.Member{ID: 404, Email: "a@clube.pt"})
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresDelete(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM users WHERE user_id`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), 7))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListQueriesPageAndCount(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users ORDER BY email ASC LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 10).
		WillReturnRows(sqlmock.NewRows(memberRowColumns).
			AddRow(int64(11), "k@clube.pt", "", "", "Membro K", "hash", "player",
				false, false, nil, nil, "", "", nil, now, now))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	members, total, err := store.List(context.Background(), models.ListParams{
		Page: 2, Limit: 10, OrderBy: "email",
	})
	require.NoError(t, err)
	assert.Equal(t, 25, total)
	require.Len(t, members, 1)
	assert.Equal(t, int64(11), members[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
