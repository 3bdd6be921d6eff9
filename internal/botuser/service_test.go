package botuser

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
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store/memory"
)

func TestTouchCreatesThenRefreshes(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(memory.New(), clock, zap.NewNop().Sugar())

	first, err := svc.Touch(ctx, TouchInput{TelegramID: 100, Username: "ivan", FirstName: "Ivan"})
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	second, err := svc.Touch(ctx, TouchInput{TelegramID: 100, Username: "ivan_p", FirstName: "Ivan", LastName: "Petrov"})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, clock.Now().UTC(), second.LastActivity)
	assert.Equal(t, "Ivan Petrov", second.DisplayName())

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestTouchRejectsMissingTelegramID(t *testing.T) {
	svc := NewService(memory.New(), nil, zap.NewNop().Sugar())
	_, err := svc.Touch(context.Background(), TouchInput{Username: "x"})
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
}
