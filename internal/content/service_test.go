package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/content/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store/memory"
)

func strp(s string) *string { return &s }

func TestContentLifecycle(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(memory.New(), clock, zap.NewNop().Sugar())

	c, err := svc.Create(ctx, CreateInput{Key: " welcome ", Value: "*Hi*", Description: "greeting"})
	require.NoError(t, err)
	assert.Equal(t, "welcome", c.Key)

	_, err = svc.Create(ctx, CreateInput{Key: "welcome"})
	assert.True(t, errors.Is(err, apperr.ErrConflict))

	clock.Advance(time.Minute)
	upd, err := svc.Update(ctx, c.ID, entity.Patch{Key: strp("welcome"), Value: strp("Hello")})
	require.NoError(t, err)
	assert.Equal(t, "Hello", upd.Value)
	assert.Equal(t, "greeting", upd.Description)
	assert.True(t, upd.UpdatedAt.After(c.UpdatedAt))

	_, err = svc.Update(ctx, c.ID, entity.Patch{Key: strp("renamed")})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))

	byKey, err := svc.GetByKey(ctx, "welcome")
	require.NoError(t, err)
	assert.Equal(t, "Hello", byKey.Value)

	require.NoError(t, svc.Delete(ctx, c.ID))
	assert.True(t, errors.Is(svc.Delete(ctx, c.ID), apperr.ErrNotFound))
	_, err = svc.Update(ctx, c.ID, entity.Patch{Value: strp("x")})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestCreateRequiresKey(t *testing.T) {
	svc := NewService(memory.New(), nil, zap.NewNop().Sugar())
	_, err := svc.Create(context.Background(), CreateInput{Key: "  "})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
	assert.Equal(t, "key is required", apperr.Message(err))
}
