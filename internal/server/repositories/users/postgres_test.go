package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/chouaib-skitou/Festivio/internal/common"
	"github.com/chouaib-skitou/Festivio/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "first_name", "last_name", "username", "email", "password_hash", "role", "is_verified", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+users\s*\(first_name,\s*last_name,\s*username,\s*email,\s*password_hash,\s*role,\s*is_verified\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6,\s*\$7\)\s*RETURNING\s+id,\s*created_at,\s*updated_at\s*$`

	now := time.Now()
	first := "Alice"
	mock.ExpectQuery(q).
		WithArgs("Alice", nil, "alice", "alice@x.com", "hash", "ROLE_PARTICIPANT", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("u-1", now, now))

	u := &models.User{FirstName: &first, Username: "alice", Email: "alice@x.com", PasswordHash: "hash", Role: models.RoleParticipant}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, now, got.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_uidx"})

	_, err := repo.Create(context.Background(), &models.User{Email: "a@x.com", Role: models.RoleParticipant})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`INSERT\s+INTO\s+users`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{Email: "a@x.com"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`).
		WithArgs("alice@x.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", nil, "Smith", "alice", "alice@x.com", "hash", "ROLE_ORGANIZER", true, now, now))

	got, err := repo.GetByEmail(context.Background(), "alice@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Nil(t, got.FirstName)
	require.NotNil(t, got.LastName)
	assert.Equal(t, "Smith", *got.LastName)
	assert.Equal(t, models.RoleOrganizer, got.Role)
	assert.True(t, got.IsVerified)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+email`).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id`).
		WithArgs("u-1").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByID_MalformedID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+id`).
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})

	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	updated := time.Now()
	mock.ExpectQuery(`(?s)^UPDATE\s+users\s+SET\s+first_name\s*=\s*\$2.*WHERE\s+id\s*=\s*\$1\s+RETURNING\s+updated_at\s*$`).
		WithArgs("u-1", nil, nil, "alice", "alice@x.com", "newhash", "ROLE_PARTICIPANT", true).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(updated))

	u := &models.User{ID: "u-1", Username: "alice", Email: "alice@x.com", PasswordHash: "newhash", Role: models.RoleParticipant, IsVerified: true}
	require.NoError(t, repo.Update(context.Background(), u))
	assert.Equal(t, updated, u.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFoundAndDuplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`UPDATE\s+users`).WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`UPDATE\s+users`).WillReturnError(&pgconn.PgError{Code: "23505"})

	assert.ErrorIs(t, repo.Update(context.Background(), &models.User{ID: "x"}), common.ErrorNotFound)
	assert.ErrorIs(t, repo.Update(context.Background(), &models.User{ID: "y"}), common.ErrDuplicateEmail)
}

func TestList_All(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	now := time.Now()
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+users\s+ORDER\s+BY\s+created_at$`).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", nil, nil, "a", "a@x.com", "h", "ROLE_ADMIN", true, now, now).
			AddRow("u-2", nil, nil, "b", "b@x.com", "h", "ROLE_PARTICIPANT", false, now, now))

	got, err := repo.List(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "u-2", got[1].ID)
}

func TestList_ByRole(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	role := models.RoleOrganizer
	mock.ExpectQuery(`FROM\s+users\s+WHERE\s+role\s*=\s*\$1\s+ORDER\s+BY`).
		WithArgs("ROLE_ORGANIZER").
		WillReturnRows(sqlmock.NewRows(userCols))

	got, err := repo.List(context.Background(), &role)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestEventIDsAndTaskIDs(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT\s+id\s+FROM\s+events\s+WHERE\s+organizer_id\s*=\s*\$1\s+UNION\s+SELECT\s+event_id\s+FROM\s+event_participants`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("e-1").AddRow("e-2"))
	mock.ExpectQuery(`SELECT\s+id\s+FROM\s+tasks\s+WHERE\s+assigned_to\s*=\s*\$1`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("t-1"))

	events, err := repo.EventIDs(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"e-1", "e-2"}, events)

	tasks, err := repo.TaskIDs(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t-1"}, tasks)
}
