package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/application/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
)

const applicationColumns = `id, mfo_id, mfo_name, user_telegram_id, user_name, amount, term, phone, status, created_at`

const statusChangeColumns = `id, application_id, from_status, to_status, admin_id, created_at`

func (s *Store) CreateApplication(ctx context.Context, a *entity.Application) error {
	const q = `INSERT INTO applications (` + applicationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, s.q(q),
		a.ID, a.MFOID, a.MFOName, a.UserTelegramID, a.UserName, a.Amount, a.Term, a.Phone, a.Status, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert application: %w", err)
	}
	return nil
}

func (s *Store) GetApplication(ctx context.Context, id string) (*entity.Application, error) {
	return getApplication(ctx, s.db, id)
}

func getApplication(ctx context.Context, q queryer, id string) (*entity.Application, error) {
	var a entity.Application
	if err := sqlx.GetContext(ctx, q, &a, q.Rebind(`SELECT `+applicationColumns+` FROM applications WHERE id = ?`), id); err != nil {
		return nil, notFound(err, "application %s not found", id)
	}
	return &a, nil
}

func (s *Store) ListApplications(ctx context.Context, f entity.Filter) ([]entity.Application, error) {
	q := `SELECT ` + applicationColumns + ` FROM applications`
	var args []any
	if f.Status != nil {
		q += ` WHERE status = ?`
		args = append(args, *f.Status)
	}
	q += ` ORDER BY created_at, id`
	out := []entity.Application{}
	if err := s.db.SelectContext(ctx, &out, s.q(q), args...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return out, nil
}

// CompareAndSetStatus relies on the row lock taken by UPDATE: a concurrent
// writer that already moved the row makes the WHERE clause miss.
func (s *Store) CompareAndSetStatus(ctx context.Context, c *entity.StatusChange) (*entity.Application, error) {
	var out *entity.Application
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE applications SET status = ? WHERE id = ? AND status = ?`), c.To, c.ApplicationID, c.From)
		if err != nil {
			return fmt.Errorf("update application status: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			if _, err := getApplication(ctx, tx, c.ApplicationID); err != nil {
				return err
			}
			return store.ErrStatusChanged
		}

		const ins = `INSERT INTO application_status_changes (` + statusChangeColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, tx.Rebind(ins), c.ID, c.ApplicationID, c.From, c.To, c.AdminID, c.CreatedAt); err != nil {
			return fmt.Errorf("insert status change: %w", err)
		}
		out, err = getApplication(ctx, tx, c.ApplicationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) ListStatusChanges(ctx context.Context, applicationID string) ([]entity.StatusChange, error) {
	if _, err := s.GetApplication(ctx, applicationID); err != nil {
		return nil, err
	}
	out := []entity.StatusChange{}
	q := s.q(`SELECT ` + statusChangeColumns + ` FROM application_status_changes WHERE application_id = ? ORDER BY created_at, id`)
	if err := s.db.SelectContext(ctx, &out, q, applicationID); err != nil {
		return nil, fmt.Errorf("list status changes: %w", err)
	}
	return out, nil
}

func (s *Store) CountApplicationsByStatus(ctx context.Context) (map[entity.Status]int64, error) {
	var rows []struct {
		Status entity.Status `db:"status"`
		N      int64         `db:"n"`
	}
	if err := s.db.SelectContext(ctx, &rows, `SELECT status, COUNT(*) AS n FROM applications GROUP BY status`); err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}
	out := make(map[entity.Status]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.N
	}
	return out, nil
}

func (s *Store) ApplicationCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return s.createdSince(ctx, "applications", since)
}
