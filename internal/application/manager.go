// Package application owns the loan application state machine. Statuses
// change only through Manager.SetStatus.
package application

import (
	"context"
	"strings"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/application/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/validation"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/pkg/utilities"
)

// defaultAttempts bounds the read-decide-CAS loop in SetStatus.
const defaultAttempts = 3

// CreateInput is the body the bot posts to /api/applications.
type CreateInput struct {
	MFOID          string `json:"mfo_id" validate:"required"`
	UserTelegramID int64  `json:"user_telegram_id" validate:"gt=0"`
	UserName       string `json:"user_name" validate:"max=200"`
	Amount         int64  `json:"amount" validate:"gt=0"`
	Term           int    `json:"term" validate:"gt=0"`
	Phone          string `json:"phone" validate:"max=32"`
}

type Manager struct {
	store    store.Store
	clock    clockwork.Clock
	logger   *zap.SugaredLogger
	attempts int
}

func NewManager(st store.Store, clock clockwork.Clock, logger *zap.SugaredLogger) *Manager {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Manager{store: st, clock: clock, logger: logger, attempts: defaultAttempts}
}

// Create stores a pending application with the MFO name and user display
// name snapshotted at this moment.
func (m *Manager) Create(ctx context.Context, in CreateInput) (*entity.Application, error) {
	in.UserName = strings.TrimSpace(in.UserName)
	in.Phone = strings.TrimSpace(in.Phone)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	mfo, err := m.store.GetMFO(ctx, in.MFOID)
	if err != nil {
		return nil, err
	}
	name := in.UserName
	if name == "" {
		if u, err := m.store.GetUserByTelegramID(ctx, in.UserTelegramID); err == nil {
			name = u.DisplayName()
		}
	}
	a := &entity.Application{
		ID:             utilities.NewSnowflakeID(),
		MFOID:          mfo.ID,
		MFOName:        mfo.Name,
		UserTelegramID: in.UserTelegramID,
		UserName:       name,
		Amount:         in.Amount,
		Term:           in.Term,
		Phone:          in.Phone,
		Status:         entity.StatusPending,
		CreatedAt:      m.clock.Now().UTC(),
	}
	if err := m.store.CreateApplication(ctx, a); err != nil {
		return nil, err
	}
	m.logger.Infow("application created", "application_id", a.ID, "mfo_id", a.MFOID)
	return a, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*entity.Application, error) {
	return m.store.GetApplication(ctx, id)
}

func (m *Manager) List(ctx context.Context, f entity.Filter) ([]entity.Application, error) {
	return m.store.ListApplications(ctx, f)
}

// History returns the recorded transitions of one application, oldest first.
func (m *Manager) History(ctx context.Context, id string) ([]entity.StatusChange, error) {
	return m.store.ListStatusChanges(ctx, id)
}

// SetStatus applies an operator decision. Every success, including
// re-affirming the current status, writes a StatusChange.
func (m *Manager) SetStatus(ctx context.Context, adminID, id string, to entity.Status) (*entity.Application, error) {
	if _, err := entity.ParseStatus(string(to)); err != nil {
		return nil, err
	}
	for attempt := 1; attempt <= m.attempts; attempt++ {
		cur, err := m.store.GetApplication(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := checkTransition(cur.Status, to); err != nil {
			return nil, err
		}
		change := &entity.StatusChange{
			ID:            utilities.NewSnowflakeID(),
			ApplicationID: id,
			From:          cur.Status,
			To:            to,
			AdminID:       adminID,
			CreatedAt:     m.clock.Now().UTC(),
		}
		out, err := m.store.CompareAndSetStatus(ctx, change)
		if store.IsStatusChanged(err) {
			m.logger.Debugw("status changed concurrently, retrying", "application_id", id, "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		if cur.Status.Terminal() && cur.Status != to {
			m.logger.Warnw("application decision corrected",
				"application_id", id, "from", cur.Status, "to", to, "admin_id", adminID)
		} else {
			m.logger.Infow("application status set",
				"application_id", id, "from", cur.Status, "to", to, "admin_id", adminID)
		}
		return out, nil
	}
	return nil, apperr.Conflictf("application %s is being updated concurrently, try again", id)
}

// checkTransition allows pending to anything, same-status re-affirmation
// and terminal corrections. Decided applications never go back to pending.
func checkTransition(from, to entity.Status) error {
	if from.Terminal() && to == entity.StatusPending {
		return apperr.Conflictf("application already %s; reopening is not allowed", from)
	}
	return nil
}
