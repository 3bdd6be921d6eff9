package sqlstore

import (
	"context"
	"fmt"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/content/entity"
)

const contentColumns = `id, "key", value, description, updated_at`

func (s *Store) CreateContent(ctx context.Context, c *entity.Content) error {
	const q = `INSERT INTO content (` + contentColumns + `) VALUES (?, ?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, s.q(q), c.ID, c.Key, c.Value, c.Description, c.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflictf("content key %q already exists", c.Key)
		}
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

func (s *Store) GetContent(ctx context.Context, id string) (*entity.Content, error) {
	var c entity.Content
	if err := s.db.GetContext(ctx, &c, s.q(`SELECT `+contentColumns+` FROM content WHERE id = ?`), id); err != nil {
		return nil, notFound(err, "content %s not found", id)
	}
	return &c, nil
}

func (s *Store) GetContentByKey(ctx context.Context, key string) (*entity.Content, error) {
	var c entity.Content
	if err := s.db.GetContext(ctx, &c, s.q(`SELECT `+contentColumns+` FROM content WHERE "key" = ?`), key); err != nil {
		return nil, notFound(err, "content %q not found", key)
	}
	return &c, nil
}

func (s *Store) ListContent(ctx context.Context) ([]entity.Content, error) {
	out := []entity.Content{}
	if err := s.db.SelectContext(ctx, &out, `SELECT `+contentColumns+` FROM content ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	return out, nil
}

// UpdateContent writes value and description; the key column is never
// updated.
func (s *Store) UpdateContent(ctx context.Context, c *entity.Content) error {
	const q = `UPDATE content SET value = ?, description = ?, updated_at = ? WHERE id = ?`
	res, err := s.db.ExecContext(ctx, s.q(q), c.Value, c.Description, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update content: %w", err)
	}
	if err := affected(res, "content %s not found", c.ID); err != nil {
		return err
	}
	cur, err := s.GetContent(ctx, c.ID)
	if err != nil {
		return err
	}
	*c = *cur
	return nil
}

func (s *Store) DeleteContent(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.q(`DELETE FROM content WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return affected(res, "content %s not found", id)
}
