package sqlstore

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	adminentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/admin/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	appentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/application/entity"
	userentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/botuser/entity"
	contententity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/content/entity"
	mfoentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/mfo/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/migrations"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/pkg/database"
)

func newSQLite(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver:  database.DriverSQLite,
		DSN:     filepath.Join(t.TempDir(), "admin.db"),
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	xdb := sqlx.NewDb(db, database.DriverSQLite)
	t.Cleanup(func() { xdb.Close() })

	fsys, err := migrations.For(database.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, Migrate(context.Background(), xdb, fsys, zap.NewNop().Sugar()))
	// second run is a no-op
	require.NoError(t, Migrate(context.Background(), xdb, fsys, zap.NewNop().Sugar()))
	return New(xdb)
}

func sampleMFO(id string) *mfoentity.MFO {
	return &mfoentity.MFO{
		ID: id, Name: "MFO " + id, MinAmount: 1000, MaxAmount: 30000, MinTerm: 7, MaxTerm: 30,
		InterestRate: 0.8, ApprovalRate: 90, IsActive: true, CreatedAt: time.Now().UTC(),
	}
}

func TestSQLiteAdmins(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	now := time.Now().UTC()

	require.NoError(t, s.CreateAdmin(ctx, &adminentity.Admin{ID: "1", Email: "ops@example.com", Name: "Ops", PasswordHash: "h", CreatedAt: now}))
	err := s.CreateAdmin(ctx, &adminentity.Admin{ID: "2", Email: "OPS@EXAMPLE.COM", Name: "Dup", PasswordHash: "h", CreatedAt: now})
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)

	a, err := s.GetAdminByEmail(ctx, "Ops@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "1", a.ID)
	assert.WithinDuration(t, now, a.CreatedAt, time.Millisecond)

	_, err = s.GetAdmin(ctx, "missing")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestSQLiteMFOAndClicks(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)

	require.NoError(t, s.CreateMFO(ctx, sampleMFO("1")))
	inactive := sampleMFO("2")
	inactive.IsActive = false
	require.NoError(t, s.CreateMFO(ctx, inactive))

	active, err := s.ListMFOs(ctx, store.MFOFilter{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "1", active[0].ID)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.RecordClick(ctx, &mfoentity.Click{ID: "c" + string(rune('a'+i)), MFOID: "1", CreatedAt: time.Now().UTC()})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	m, err := s.GetMFO(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, int64(20), m.Clicks)
	n, err := s.CountClicks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(20), n)

	m.Name = "Renamed"
	m.Clicks = 0
	require.NoError(t, s.UpdateMFO(ctx, m))
	assert.Equal(t, "Renamed", m.Name)
	assert.Equal(t, int64(20), m.Clicks)

	_, err = s.RecordClick(ctx, &mfoentity.Click{ID: "zz", MFOID: "missing", CreatedAt: time.Now().UTC()})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	require.NoError(t, s.DeleteMFO(ctx, "2"))
	assert.True(t, errors.Is(s.DeleteMFO(ctx, "2"), apperr.ErrNotFound))
}

func TestSQLiteUsersUpsert(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	t0 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	u := &userentity.User{ID: "u1", TelegramID: 42, Username: "a", CreatedAt: t0, LastActivity: t0}
	require.NoError(t, s.UpsertUser(ctx, u))

	again := &userentity.User{ID: "u2", TelegramID: 42, Username: "b", CreatedAt: t0.Add(time.Hour), LastActivity: t0.Add(time.Hour)}
	require.NoError(t, s.UpsertUser(ctx, again))
	assert.Equal(t, "u1", again.ID)
	assert.Equal(t, "b", again.Username)
	assert.True(t, again.CreatedAt.Equal(t0))

	stale := &userentity.User{ID: "u3", TelegramID: 42, CreatedAt: t0, LastActivity: t0}
	require.NoError(t, s.UpsertUser(ctx, stale))
	assert.True(t, stale.LastActivity.Equal(t0.Add(time.Hour)))

	since, err := s.UserCreatedSince(ctx, t0.Add(-time.Minute))
	require.NoError(t, err)
	assert.Len(t, since, 1)
	n, _ := s.CountUsers(ctx)
	assert.Equal(t, int64(1), n)
}

func TestSQLiteApplicationStatus(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	now := time.Now().UTC()

	app := &appentity.Application{ID: "a1", MFOID: "m", MFOName: "M", UserTelegramID: 42, Amount: 5000, Term: 14, Status: appentity.StatusPending, CreatedAt: now}
	require.NoError(t, s.CreateApplication(ctx, app))

	got, err := s.CompareAndSetStatus(ctx, &appentity.StatusChange{ID: "c1", ApplicationID: "a1", From: appentity.StatusPending, To: appentity.StatusApproved, AdminID: "ad", CreatedAt: now})
	require.NoError(t, err)
	assert.Equal(t, appentity.StatusApproved, got.Status)

	_, err = s.CompareAndSetStatus(ctx, &appentity.StatusChange{ID: "c2", ApplicationID: "a1", From: appentity.StatusPending, To: appentity.StatusRejected, AdminID: "ad", CreatedAt: now})
	assert.True(t, store.IsStatusChanged(err))

	_, err = s.CompareAndSetStatus(ctx, &appentity.StatusChange{ID: "c3", ApplicationID: "nope", From: appentity.StatusPending, To: appentity.StatusRejected})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	history, err := s.ListStatusChanges(ctx, "a1")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, appentity.StatusApproved, history[0].To)

	approved := appentity.StatusApproved
	list, err := s.ListApplications(ctx, appentity.Filter{Status: &approved})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	byStatus, err := s.CountApplicationsByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[appentity.Status]int64{appentity.StatusApproved: 1}, byStatus)
}

func TestSQLiteContent(t *testing.T) {
	ctx := context.Background()
	s := newSQLite(t)
	now := time.Now().UTC()

	require.NoError(t, s.CreateContent(ctx, &contententity.Content{ID: "1", Key: "welcome", Value: "hi", UpdatedAt: now}))
	err := s.CreateContent(ctx, &contententity.Content{ID: "2", Key: "welcome", UpdatedAt: now})
	assert.True(t, errors.Is(err, apperr.ErrConflict), "got %v", err)

	c := &contententity.Content{ID: "1", Key: "ignored", Value: "hello", UpdatedAt: now}
	require.NoError(t, s.UpdateContent(ctx, c))
	assert.Equal(t, "welcome", c.Key)
	assert.Equal(t, "hello", c.Value)

	byKey, err := s.GetContentByKey(ctx, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "1", byKey.ID)

	require.NoError(t, s.DeleteContent(ctx, "1"))
	assert.True(t, errors.Is(s.DeleteContent(ctx, "1"), apperr.ErrNotFound))
}
