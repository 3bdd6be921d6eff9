package mfo

import (
	"context"
	"errors"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/mfo/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store/memory"
)

func ptr[T any](v T) *T { return &v }

func validPatch() entity.Patch {
	return entity.Patch{
		Name:      ptr("QuickMoney"),
		MinAmount: ptr(int64(1000)),
		MaxAmount: ptr(int64(30000)),
		MinTerm:   ptr(7),
		MaxTerm:   ptr(30),
	}
}

func newService() (*Service, *memory.Store) {
	st := memory.New()
	return NewService(st, clockwork.NewFakeClock(), zap.NewNop().Sugar()), st
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, _ := newService()
	p := validPatch()
	m, err := svc.Create(context.Background(), p)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.True(t, m.IsActive)
	assert.Zero(t, m.Clicks)
	assert.LessOrEqual(t, m.MinAmount, m.MaxAmount)
}

func TestCreateRejectsOrderingAndPersistsNothing(t *testing.T) {
	ctx := context.Background()
	svc, st := newService()
	p := validPatch()
	p.MinAmount = ptr(int64(50000))

	_, err := svc.Create(ctx, p)
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
	n, _ := st.CountMFOs(ctx)
	assert.Zero(t, n)

	p = validPatch()
	p.MinTerm = ptr(60)
	_, err = svc.Create(ctx, p)
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}

func TestUpdateValidatesMergedRecord(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	m, err := svc.Create(ctx, validPatch())
	require.NoError(t, err)

	// max below the stored min only fails once merged
	_, err = svc.Update(ctx, m.ID, entity.Patch{MaxAmount: ptr(int64(500))})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(30000), got.MaxAmount)

	upd, err := svc.Update(ctx, m.ID, entity.Patch{Description: ptr("fast loans"), IsActive: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "fast loans", upd.Description)
	assert.False(t, upd.IsActive)
	assert.Equal(t, "QuickMoney", upd.Name)

	_, err = svc.Update(ctx, "missing", entity.Patch{Name: ptr("x")})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestTrackClickAndPublicList(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	a, err := svc.Create(ctx, validPatch())
	require.NoError(t, err)
	p := validPatch()
	p.IsActive = ptr(false)
	_, err = svc.Create(ctx, p)
	require.NoError(t, err)

	tid := int64(7)
	for i := 0; i < 3; i++ {
		_, err := svc.TrackClick(ctx, a.ID, &tid)
		require.NoError(t, err)
	}
	got, _ := svc.Get(ctx, a.ID)
	assert.Equal(t, int64(3), got.Clicks)

	public, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, a.ID, public[0].ID)

	_, err = svc.TrackClick(ctx, "missing", nil)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeleteMissing(t *testing.T) {
	svc, _ := newService()
	assert.True(t, errors.Is(svc.Delete(context.Background(), "nope"), apperr.ErrNotFound))
}
