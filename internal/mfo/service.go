package mfo

import (
	"context"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/mfo/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/pkg/utilities"
)

// Service holds MFO business rules. Every write is validated as a whole
// record before it reaches the store.
type Service struct {
	store  store.Store
	clock  clockwork.Clock
	logger *zap.SugaredLogger
}

func NewService(st store.Store, clock clockwork.Clock, logger *zap.SugaredLogger) *Service {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{store: st, clock: clock, logger: logger}
}

func (s *Service) List(ctx context.Context) ([]entity.MFO, error) {
	return s.store.ListMFOs(ctx, store.MFOFilter{})
}

// ListPublic returns the MFOs the bot may show.
func (s *Service) ListPublic(ctx context.Context) ([]entity.MFO, error) {
	return s.store.ListMFOs(ctx, store.MFOFilter{ActiveOnly: true})
}

func (s *Service) Get(ctx context.Context, id string) (*entity.MFO, error) {
	return s.store.GetMFO(ctx, id)
}

// Create merges p over the defaults (active, zero clicks).
func (s *Service) Create(ctx context.Context, p entity.Patch) (*entity.MFO, error) {
	m := entity.Defaults()
	p.Apply(&m)
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	m.ID = utilities.NewSnowflakeID()
	m.Clicks = 0
	m.CreatedAt = s.clock.Now().UTC()
	if err := s.store.CreateMFO(ctx, &m); err != nil {
		return nil, err
	}
	s.logger.Infow("mfo created", "mfo_id", m.ID, "name", m.Name)
	return &m, nil
}

// Update merges only the supplied fields and validates the result.
func (s *Service) Update(ctx context.Context, id string, p entity.Patch) (*entity.MFO, error) {
	m, err := s.store.GetMFO(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Empty() {
		return m, nil
	}
	p.Apply(m)
	m.Name = strings.TrimSpace(m.Name)
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateMFO(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Infow("mfo updated", "mfo_id", id)
	return m, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteMFO(ctx, id); err != nil {
		return err
	}
	s.logger.Infow("mfo deleted", "mfo_id", id)
	return nil
}

// TrackClick records one referral-link follow and bumps the counter.
func (s *Service) TrackClick(ctx context.Context, mfoID string, telegramID *int64) (int64, error) {
	c := &entity.Click{
		ID:         utilities.NewSnowflakeID(),
		MFOID:      mfoID,
		TelegramID: telegramID,
		CreatedAt:  s.clock.Now().UTC(),
	}
	n, err := s.store.RecordClick(ctx, c)
	if err != nil {
		return 0, err
	}
	s.logger.Debugw("click tracked", "mfo_id", mfoID, "clicks", n)
	return n, nil
}
