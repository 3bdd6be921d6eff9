package sqlstore

import (
	"context"
	"fmt"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/admin/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
)

const adminColumns = `id, email, name, password_hash, created_at`

func (s *Store) CreateAdmin(ctx context.Context, a *entity.Admin) error {
	const q = `INSERT INTO admins (id, email, name, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, s.q(q), a.ID, a.Email, a.Name, a.PasswordHash, a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflictf("email already registered")
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (s *Store) GetAdmin(ctx context.Context, id string) (*entity.Admin, error) {
	var a entity.Admin
	if err := s.db.GetContext(ctx, &a, s.q(`SELECT `+adminColumns+` FROM admins WHERE id = ?`), id); err != nil {
		return nil, notFound(err, "admin %s not found", id)
	}
	return &a, nil
}

func (s *Store) GetAdminByEmail(ctx context.Context, email string) (*entity.Admin, error) {
	var a entity.Admin
	if err := s.db.GetContext(ctx, &a, s.q(`SELECT `+adminColumns+` FROM admins WHERE lower(email) = lower(?)`), email); err != nil {
		return nil, notFound(err, "admin not found")
	}
	return &a, nil
}
