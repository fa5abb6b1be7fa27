package companies

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var companyCols = []string{"id", "owner_user_id", "name", "description", "website", "location", "status", "rejection_reason", "created_at", "updated_at"}

func TestPGRepoCreateDuplicateOwner(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO companies`)).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "companies_owner_idx"})

	repo := &PGRepo{DB: database}
	err = repo.Create(context.Background(), Company{ID: "c-1", OwnerUserID: "u-1", Name: "Acme", Status: StatusPending})
	assert.ErrorIs(t, err, ErrAlreadyExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoSetStatusReturnsRow(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	at := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(companyCols).
		AddRow("c-1", "u-1", "Acme", nil, nil, nil, "rejected", "Missing website", at, at)
	mock.ExpectQuery(regexp.QuoteMeta(`SET status = $2, rejection_reason = $3, updated_at = $4`)).
		WithArgs("c-1", "rejected", "Missing website", at).
		WillReturnRows(rows)

	repo := &PGRepo{DB: database}
	company, err := repo.SetStatus(context.Background(), "c-1", StatusRejected, "Missing website", at)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, company.Status)
	assert.Equal(t, "Missing website", company.RejectionReason)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoSetStatusMissing(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE companies`)).
		WillReturnRows(sqlmock.NewRows(companyCols))

	repo := &PGRepo{DB: database}
	_, err = repo.SetStatus(context.Background(), "nope", StatusApproved, "", time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoListFiltersByStatus(t *testing.T) {
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer database.Close()

	at := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE ($1 = '' OR status = $1)`)).
		WithArgs("pending").
		WillReturnRows(sqlmock.NewRows(companyCols).AddRow("c-1", "u-1", "Acme", "Anvils", nil, "Berlin", "pending", nil, at, at))

	repo := &PGRepo{DB: database}
	list, err := repo.List(context.Background(), StatusPending)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Anvils", list[0].Description)
	assert.Empty(t, list[0].Website)
	require.NoError(t, mock.ExpectationsWereMet())
}
