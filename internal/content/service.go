package content

import (
	"context"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/content/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/validation"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/pkg/utilities"
)

// CreateInput is the body of POST /api/content.
type CreateInput struct {
	Key         string `json:"key" validate:"required,max=128"`
	Value       string `json:"value"`
	Description string `json:"description" validate:"max=500"`
}

// Service encapsulates business logic for bot content snippets.
type Service struct {
	store  store.ContentStore
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

func NewService(st store.ContentStore, clock clockwork.Clock, logger *zap.SugaredLogger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{store: st, clock: clock, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]entity.Content, error) {
	return s.store.ListContent(ctx)
}

// GetByKey is how the bot resolves a snippet.
func (s *Service) GetByKey(ctx context.Context, key string) (*entity.Content, error) {
	return s.store.GetContentByKey(ctx, key)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Content, error) {
	in.Key = strings.TrimSpace(in.Key)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	c := &entity.Content{
		ID:          utilities.NewSnowflakeID(),
		Key:         in.Key,
		Value:       in.Value,
		Description: in.Description,
		UpdatedAt:   s.clock.Now().UTC(),
	}
	if err := s.store.CreateContent(ctx, c); err != nil {
		return nil, err
	}
	s.logger.Infow("content created", "content_id", c.ID, "key", c.Key)
	return c, nil
}

// Update merges value and description. A key that differs from the stored
// one is rejected since keys are referenced by the bot.
func (s *Service) Update(ctx context.Context, id string, p entity.Patch) (*entity.Content, error) {
	c, err := s.store.GetContent(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Key != nil && strings.TrimSpace(*p.Key) != c.Key {
		return nil, apperr.Invalid("content key cannot be changed")
	}
	if p.Empty() {
		return c, nil
	}
	p.Apply(c)
	c.UpdatedAt = s.clock.Now().UTC()
	if err := s.store.UpdateContent(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteContent(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("content deleted", "content_id", id)
	return nil
}
