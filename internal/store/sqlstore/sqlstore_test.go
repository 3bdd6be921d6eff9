package sqlstore

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"testing/fstest"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	adminentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/admin/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	appentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/application/entity"
	mfoentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/mfo/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(sqlx.NewDb(db, "postgres")), mock
}

func TestCreateAdminDuplicateEmailIsConflict(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO admins")).
		WillReturnError(&pq.Error{Code: "23505"})

	err := s.CreateAdmin(context.Background(), &adminentity.Admin{ID: "1", Email: "a@b.c"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAdminByEmailIsCaseInsensitiveQuery(t *testing.T) {
	s, mock := newMock(t)
	rows := sqlmock.NewRows([]string{"id", "email", "name", "password_hash", "created_at"}).
		AddRow("1", "ops@example.com", "Ops", "hash", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("WHERE lower(email) = lower($1)")).
		WithArgs("OPS@example.com").
		WillReturnRows(rows)

	a, err := s.GetAdminByEmail(context.Background(), "OPS@example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMFONotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM mfos WHERE id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.GetMFO(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteMFOMissingIsNotFound(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM mfos WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.DeleteMFO(context.Background(), "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestRecordClickIncrementsAtomicallyInTx(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE mfos SET clicks = clicks + 1 WHERE id = $1 RETURNING clicks")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"clicks"}).AddRow(4))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO clicks")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	n, err := s.RecordClick(context.Background(), &mfoentity.Click{ID: "c1", MFOID: "m1", CreatedAt: time.Now()})
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordClickUnknownMFORollsBack(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE mfos SET clicks")).
		WillReturnRows(sqlmock.NewRows([]string{"clicks"}))
	mock.ExpectRollback()

	_, err := s.RecordClick(context.Background(), &mfoentity.Click{ID: "c1", MFOID: "nope"})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompareAndSetStatusMiss(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = $1 WHERE id = $2 AND status = $3")).
		WithArgs(appentity.StatusRejected, "a1", appentity.StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("FROM applications WHERE id = $1")).
		WithArgs("a1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("a1", "approved"))
	mock.ExpectRollback()

	_, err := s.CompareAndSetStatus(context.Background(), &appentity.StatusChange{
		ApplicationID: "a1", From: appentity.StatusPending, To: appentity.StatusRejected,
	})
	assert.True(t, store.IsStatusChanged(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompareAndSetStatusWritesAuditRow(t *testing.T) {
	s, mock := newMock(t)
	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO application_status_changes")).
		WithArgs("c1", "a1", appentity.StatusPending, appentity.StatusApproved, "admin", now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM applications WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("a1", "approved"))
	mock.ExpectCommit()

	a, err := s.CompareAndSetStatus(context.Background(), &appentity.StatusChange{
		ID: "c1", ApplicationID: "a1", From: appentity.StatusPending, To: appentity.StatusApproved,
		AdminID: "admin", CreatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, appentity.StatusApproved, a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateSkipsAppliedVersions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	xdb := sqlx.NewDb(db, "postgres")

	fsys := fstest.MapFS{
		"001_init.sql": {Data: []byte("CREATE TABLE a (id int)")},
		"002_more.sql": {Data: []byte("CREATE TABLE b (id int)")},
		"README.md":    {Data: []byte("ignored")},
	}

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT version FROM schema_migrations")).
		WillReturnRows(sqlmock.NewRows([]string{"version"}).AddRow("001_init.sql"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE b (id int)")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (version, applied_at) VALUES ($1, $2)")).
		WithArgs("002_more.sql", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, Migrate(context.Background(), xdb, fsys, zap.NewNop().Sugar()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
