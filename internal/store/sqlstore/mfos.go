package sqlstore

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/mfo/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
)

const mfoColumns = `id, name, description, logo_url, website_url, min_amount, max_amount,
	min_term, max_term, interest_rate, approval_rate, is_active, clicks, created_at`

func (s *Store) CreateMFO(ctx context.Context, m *entity.MFO) error {
	const q = `INSERT INTO mfos (` + mfoColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, s.q(q),
		m.ID, m.Name, m.Description, m.LogoURL, m.WebsiteURL, m.MinAmount, m.MaxAmount,
		m.MinTerm, m.MaxTerm, m.InterestRate, m.ApprovalRate, m.IsActive, m.Clicks, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert mfo: %w", err)
	}
	return nil
}

func (s *Store) GetMFO(ctx context.Context, id string) (*entity.MFO, error) {
	var m entity.MFO
	if err := s.db.GetContext(ctx, &m, s.q(`SELECT `+mfoColumns+` FROM mfos WHERE id = ?`), id); err != nil {
		return nil, notFound(err, "mfo %s not found", id)
	}
	return &m, nil
}

func (s *Store) ListMFOs(ctx context.Context, f store.MFOFilter) ([]entity.MFO, error) {
	q := `SELECT ` + mfoColumns + ` FROM mfos`
	if f.ActiveOnly {
		q += ` WHERE is_active = ?`
	}
	q += ` ORDER BY created_at, id`
	var args []any
	if f.ActiveOnly {
		args = append(args, true)
	}
	out := []entity.MFO{}
	if err := s.db.SelectContext(ctx, &out, s.q(q), args...); err != nil {
		return nil, fmt.Errorf("list mfos: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateMFO(ctx context.Context, m *entity.MFO) error {
	const q = `UPDATE mfos SET name = ?, description = ?, logo_url = ?, website_url = ?,
		min_amount = ?, max_amount = ?, min_term = ?, max_term = ?, interest_rate = ?,
		approval_rate = ?, is_active = ?
		WHERE id = ?`
	res, err := s.db.ExecContext(ctx, s.q(q),
		m.Name, m.Description, m.LogoURL, m.WebsiteURL, m.MinAmount, m.MaxAmount,
		m.MinTerm, m.MaxTerm, m.InterestRate, m.ApprovalRate, m.IsActive, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update mfo: %w", err)
	}
	if err := affected(res, "mfo %s not found", m.ID); err != nil {
		return err
	}
	cur, err := s.GetMFO(ctx, m.ID)
	if err != nil {
		return err
	}
	*m = *cur
	return nil
}

func (s *Store) DeleteMFO(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM mfos WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete mfo: %w", err)
	}
	return affected(res, "mfo %s not found", id)
}

func (s *Store) CountMFOs(ctx context.Context) (int64, error) {
	return s.count(ctx, "mfos")
}

func (s *Store) RecordClick(ctx context.Context, c *entity.Click) (int64, error) {
	var n int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		if n, err = incrementClicks(ctx, tx, c.MFOID); err != nil {
			return err
		}
		const q = `INSERT INTO clicks (id, mfo_id, telegram_id, created_at) VALUES (?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, tx.Rebind(q), c.ID, c.MFOID, c.TelegramID, c.CreatedAt); err != nil {
			return fmt.Errorf("insert click: %w", err)
		}
		return nil
	})
	return n, err
}

func (s *Store) CountClicks(ctx context.Context) (int64, error) {
	return s.count(ctx, "clicks")
}

// incrementClicks is a single UPDATE so concurrent callers never lose an
// increment.
func incrementClicks(ctx context.Context, q queryer, id string) (int64, error) {
	var n int64
	query := q.Rebind(`UPDATE mfos SET clicks = clicks + 1 WHERE id = ? RETURNING clicks`)
	if err := sqlx.GetContext(ctx, q, &n, query, id); err != nil {
		return 0, notFound(err, "mfo %s not found", id)
	}
	return n, nil
}

func (s *Store) count(ctx context.Context, table string) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
