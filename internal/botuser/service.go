package botuser

import (
	"context"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/botuser/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/validation"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/pkg/utilities"
)

// TouchInput is what the bot sends on every interaction.
type TouchInput struct {
	TelegramID int64  `json:"telegram_id" validate:"gt=0"`
	Username   string `json:"username" validate:"max=64"`
	FirstName  string `json:"first_name" validate:"max=128"`
	LastName   string `json:"last_name" validate:"max=128"`
}

type Service struct {
	store  store.UserStore
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

func NewService(st store.UserStore, clock clockwork.Clock, logger *zap.SugaredLogger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{store: st, clock: clock, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]entity.User, error) {
	return s.store.ListUsers(ctx)
}

// Touch registers a new Telegram user or refreshes an existing one and
// moves last_activity forward.
func (s *Service) Touch(ctx context.Context, in TouchInput) (*entity.User, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	u := &entity.User{
		ID:           utilities.NewSnowflakeID(),
		TelegramID:   in.TelegramID,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := s.store.UpsertUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

