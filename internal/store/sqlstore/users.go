package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/botuser/entity"
)

const userColumns = `id, telegram_id, username, first_name, last_name, created_at, last_activity`

func (s *Store) UpsertUser(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO bot_users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (telegram_id) DO UPDATE SET
    username = excluded.username,
    first_name = excluded.first_name,
    last_name = excluded.last_name,
    last_activity = CASE WHEN excluded.last_activity > bot_users.last_activity
        THEN excluded.last_activity ELSE bot_users.last_activity END`
	_, err := s.db.ExecContext(ctx, s.q(q),
		u.ID, u.TelegramID, u.Username, u.FirstName, u.LastName, u.CreatedAt, u.LastActivity,
	)
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", u.TelegramID, err)
	}
	cur, err := s.GetUserByTelegramID(ctx, u.TelegramID)
	if err != nil {
		return err
	}
	*u = *cur
	return nil
}

func (s *Store) GetUserByTelegramID(ctx context.Context, telegramID int64) (*entity.User, error) {
	var u entity.User
	if err := s.db.GetContext(ctx, &u, s.q(`SELECT `+userColumns+` FROM bot_users WHERE telegram_id = ?`), telegramID); err != nil {
		return nil, notFound(err, "user %d not found", telegramID)
	}
	return &u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]entity.User, error) {
	out := []entity.User{}
	if err := s.db.SelectContext(ctx, &out, `SELECT `+userColumns+` FROM bot_users ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return out, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, "bot_users")
}

func (s *Store) UserCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	return s.createdSince(ctx, "bot_users", since)
}

func (s *Store) createdSince(ctx context.Context, table string, since time.Time) ([]time.Time, error) {
	var out []time.Time
	q := s.q(`SELECT created_at FROM ` + table + ` WHERE created_at >= ? ORDER BY created_at`)
	if err := s.db.SelectContext(ctx, &out, q, since.UTC()); err != nil {
		return nil, fmt.Errorf("%s created since: %w", table, err)
	}
	return out, nil
}
