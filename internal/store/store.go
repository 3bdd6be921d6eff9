// Package store declares the persistence contract shared by the memory and
// SQL implementations. Every method returns apperr kinds: NotFound for
// unknown ids, Conflict for uniqueness violations.
package store

import (
	"context"
	"errors"
	"time"

	adminentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/admin/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	appentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/application/entity"
	userentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/botuser/entity"
	contententity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/content/entity"
	mfoentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/mfo/entity"
)

// ErrStatusChanged is returned by CompareAndSetStatus when the stored status
// no longer equals the expected one.
var ErrStatusChanged = apperr.Conflictf("application status changed concurrently")

// IsStatusChanged reports whether err is the compare-and-set miss.
func IsStatusChanged(err error) bool {
	var e *apperr.Error
	return errors.As(err, &e) && e == ErrStatusChanged
}

type AdminStore interface {
	// CreateAdmin fails with Conflict when the lower-cased email exists.
	CreateAdmin(ctx context.Context, a *adminentity.Admin) error
	GetAdmin(ctx context.Context, id string) (*adminentity.Admin, error)
	// GetAdminByEmail matches case-insensitively.
	GetAdminByEmail(ctx context.Context, email string) (*adminentity.Admin, error)
}

// MFOFilter narrows ListMFOs.
type MFOFilter struct {
	ActiveOnly bool
}

type MFOStore interface {
	CreateMFO(ctx context.Context, m *mfoentity.MFO) error
	GetMFO(ctx context.Context, id string) (*mfoentity.MFO, error)
	ListMFOs(ctx context.Context, f MFOFilter) ([]mfoentity.MFO, error)
	// UpdateMFO writes the admin-editable columns of m. The click counter is
	// never written by this call.
	UpdateMFO(ctx context.Context, m *mfoentity.MFO) error
	DeleteMFO(ctx context.Context, id string) error
	CountMFOs(ctx context.Context) (int64, error)
}

type ClickStore interface {
	// RecordClick stores the event and increments the MFO counter in one
	// atomic unit. It returns the new counter value.
	RecordClick(ctx context.Context, c *mfoentity.Click) (int64, error)
	CountClicks(ctx context.Context) (int64, error)
}

type UserStore interface {
	// UpsertUser inserts by telegram_id or refreshes the profile of an
	// existing user. created_at and telegram_id of an existing row are kept
	// and last_activity never moves backwards. u is updated in place.
	UpsertUser(ctx context.Context, u *userentity.User) error
	GetUserByTelegramID(ctx context.Context, telegramID int64) (*userentity.User, error)
	ListUsers(ctx context.Context) ([]userentity.User, error)
	CountUsers(ctx context.Context) (int64, error)
	// UserCreatedSince returns creation timestamps at or after since.
	UserCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

type ApplicationStore interface {
	CreateApplication(ctx context.Context, a *appentity.Application) error
	GetApplication(ctx context.Context, id string) (*appentity.Application, error)
	ListApplications(ctx context.Context, f appentity.Filter) ([]appentity.Application, error)
	// CompareAndSetStatus moves the application from change.From to
	// change.To and stores change in the same atomic unit. It fails with
	// ErrStatusChanged when the current status is not change.From.
	CompareAndSetStatus(ctx context.Context, change *appentity.StatusChange) (*appentity.Application, error)
	ListStatusChanges(ctx context.Context, applicationID string) ([]appentity.StatusChange, error)
	// CountApplicationsByStatus counts every application in one statement,
	// so the counts are a consistent snapshot.
	CountApplicationsByStatus(ctx context.Context) (map[appentity.Status]int64, error)
	ApplicationCreatedSince(ctx context.Context, since time.Time) ([]time.Time, error)
}

type ContentStore interface {
	// CreateContent fails with Conflict when the key exists.
	CreateContent(ctx context.Context, c *contententity.Content) error
	GetContent(ctx context.Context, id string) (*contententity.Content, error)
	GetContentByKey(ctx context.Context, key string) (*contententity.Content, error)
	ListContent(ctx context.Context) ([]contententity.Content, error)
	UpdateContent(ctx context.Context, c *contententity.Content) error
	DeleteContent(ctx context.Context, id string) error
}

// Store is the full repository used by the services.
type Store interface {
	AdminStore
	MFOStore
	ClickStore
	UserStore
	ApplicationStore
	ContentStore

	Ping(ctx context.Context) error
	Close() error
}
