// Package memory is an in-process store.Store used by tests and local runs
// with DATABASE_DRIVER=memory.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	adminentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/admin/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	appentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/application/entity"
	userentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/botuser/entity"
	contententity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/content/entity"
	mfoentity "github.com/ovaphlow/pitchfork/service-mfo-admin/internal/mfo/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
)

// Store keeps every collection in a map plus an insertion-order slice.
type Store struct {
	mu sync.RWMutex

	admins       map[string]adminentity.Admin
	adminByEmail map[string]string

	mfos     map[string]mfoentity.MFO
	mfoOrder []string
	clicks   []mfoentity.Click

	users     map[int64]userentity.User
	userOrder []int64

	apps     map[string]appentity.Application
	appOrder []string
	changes  map[string][]appentity.StatusChange

	content      map[string]contententity.Content
	contentOrder []string
	contentKeys  map[string]string
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		admins:       make(map[string]adminentity.Admin),
		adminByEmail: make(map[string]string),
		mfos:         make(map[string]mfoentity.MFO),
		users:        make(map[int64]userentity.User),
		apps:         make(map[string]appentity.Application),
		changes:      make(map[string][]appentity.StatusChange),
		content:      make(map[string]contententity.Content),
		contentKeys:  make(map[string]string),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// admins

func (s *Store) CreateAdmin(_ context.Context, a *adminentity.Admin) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(a.Email)
	if _, ok := s.adminByEmail[key]; ok {
		return apperr.Conflictf("email already registered")
	}
	s.admins[a.ID] = *a
	s.adminByEmail[key] = a.ID
	return nil
}

func (s *Store) GetAdmin(_ context.Context, id string) (*adminentity.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.admins[id]
	if !ok {
		return nil, apperr.NotFoundf("admin %s not found", id)
	}
	return &a, nil
}

func (s *Store) GetAdminByEmail(_ context.Context, email string) (*adminentity.Admin, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.adminByEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperr.NotFoundf("admin not found")
	}
	a := s.admins[id]
	return &a, nil
}

// mfos

func (s *Store) CreateMFO(_ context.Context, m *mfoentity.MFO) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mfos[m.ID]; ok {
		return apperr.Conflictf("mfo %s already exists", m.ID)
	}
	s.mfos[m.ID] = *m
	s.mfoOrder = append(s.mfoOrder, m.ID)
	return nil
}

func (s *Store) GetMFO(_ context.Context, id string) (*mfoentity.MFO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.mfos[id]
	if !ok {
		return nil, apperr.NotFoundf("mfo %s not found", id)
	}
	return &m, nil
}

func (s *Store) ListMFOs(_ context.Context, f store.MFOFilter) ([]mfoentity.MFO, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]mfoentity.MFO, 0, len(s.mfoOrder))
	for _, id := range s.mfoOrder {
		m := s.mfos[id]
		if f.ActiveOnly && !m.IsActive {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *Store) UpdateMFO(_ context.Context, m *mfoentity.MFO) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.mfos[m.ID]
	if !ok {
		return apperr.NotFoundf("mfo %s not found", m.ID)
	}
	next := *m
	next.Clicks = cur.Clicks
	next.CreatedAt = cur.CreatedAt
	s.mfos[m.ID] = next
	*m = next
	return nil
}

func (s *Store) DeleteMFO(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.mfos[id]; !ok {
		return apperr.NotFoundf("mfo %s not found", id)
	}
	delete(s.mfos, id)
	s.mfoOrder = removeString(s.mfoOrder, id)
	return nil
}

func (s *Store) CountMFOs(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.mfos)), nil
}

func (s *Store) incrementLocked(id string) (int64, error) {
	m, ok := s.mfos[id]
	if !ok {
		return 0, apperr.NotFoundf("mfo %s not found", id)
	}
	m.Clicks++
	s.mfos[id] = m
	return m.Clicks, nil
}

// clicks

func (s *Store) RecordClick(_ context.Context, c *mfoentity.Click) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, err := s.incrementLocked(c.MFOID)
	if err != nil {
		return 0, err
	}
	s.clicks = append(s.clicks, *c)
	return n, nil
}

func (s *Store) CountClicks(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.clicks)), nil
}

// users

func (s *Store) UpsertUser(_ context.Context, u *userentity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.TelegramID]
	if !ok {
		s.users[u.TelegramID] = *u
		s.userOrder = append(s.userOrder, u.TelegramID)
		return nil
	}
	cur.Username = u.Username
	cur.FirstName = u.FirstName
	cur.LastName = u.LastName
	if u.LastActivity.After(cur.LastActivity) {
		cur.LastActivity = u.LastActivity
	}
	s.users[u.TelegramID] = cur
	*u = cur
	return nil
}

func (s *Store) GetUserByTelegramID(_ context.Context, telegramID int64) (*userentity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[telegramID]
	if !ok {
		return nil, apperr.NotFoundf("user %d not found", telegramID)
	}
	return &u, nil
}

func (s *Store) ListUsers(context.Context) ([]userentity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]userentity.User, 0, len(s.userOrder))
	for _, tid := range s.userOrder {
		out = append(out, s.users[tid])
	}
	return out, nil
}

func (s *Store) CountUsers(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *Store) UserCreatedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []time.Time
	for _, u := range s.users {
		if !u.CreatedAt.Before(since) {
			out = append(out, u.CreatedAt)
		}
	}
	return out, nil
}

// applications

func (s *Store) CreateApplication(_ context.Context, a *appentity.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.apps[a.ID]; ok {
		return apperr.Conflictf("application %s already exists", a.ID)
	}
	s.apps[a.ID] = *a
	s.appOrder = append(s.appOrder, a.ID)
	return nil
}

func (s *Store) GetApplication(_ context.Context, id string) (*appentity.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.apps[id]
	if !ok {
		return nil, apperr.NotFoundf("application %s not found", id)
	}
	return &a, nil
}

func (s *Store) ListApplications(_ context.Context, f appentity.Filter) ([]appentity.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]appentity.Application, 0, len(s.appOrder))
	for _, id := range s.appOrder {
		if a := s.apps[id]; f.Matches(a) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) CompareAndSetStatus(_ context.Context, c *appentity.StatusChange) (*appentity.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.apps[c.ApplicationID]
	if !ok {
		return nil, apperr.NotFoundf("application %s not found", c.ApplicationID)
	}
	if a.Status != c.From {
		return nil, store.ErrStatusChanged
	}
	a.Status = c.To
	s.apps[a.ID] = a
	s.changes[a.ID] = append(s.changes[a.ID], *c)
	return &a, nil
}

func (s *Store) ListStatusChanges(_ context.Context, applicationID string) ([]appentity.StatusChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.apps[applicationID]; !ok {
		return nil, apperr.NotFoundf("application %s not found", applicationID)
	}
	out := make([]appentity.StatusChange, len(s.changes[applicationID]))
	copy(out, s.changes[applicationID])
	return out, nil
}

func (s *Store) CountApplicationsByStatus(context.Context) (map[appentity.Status]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[appentity.Status]int64)
	for _, a := range s.apps {
		out[a.Status]++
	}
	return out, nil
}

func (s *Store) ApplicationCreatedSince(_ context.Context, since time.Time) ([]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []time.Time
	for _, a := range s.apps {
		if !a.CreatedAt.Before(since) {
			out = append(out, a.CreatedAt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

// content

func (s *Store) CreateContent(_ context.Context, c *contententity.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.contentKeys[c.Key]; ok {
		return apperr.Conflictf("content key %q already exists", c.Key)
	}
	s.content[c.ID] = *c
	s.contentKeys[c.Key] = c.ID
	s.contentOrder = append(s.contentOrder, c.ID)
	return nil
}

func (s *Store) GetContent(_ context.Context, id string) (*contententity.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.content[id]
	if !ok {
		return nil, apperr.NotFoundf("content %s not found", id)
	}
	return &c, nil
}

func (s *Store) GetContentByKey(_ context.Context, key string) (*contententity.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.contentKeys[key]
	if !ok {
		return nil, apperr.NotFoundf("content %q not found", key)
	}
	c := s.content[id]
	return &c, nil
}

func (s *Store) ListContent(context.Context) ([]contententity.Content, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]contententity.Content, 0, len(s.contentOrder))
	for _, id := range s.contentOrder {
		out = append(out, s.content[id])
	}
	return out, nil
}

func (s *Store) UpdateContent(_ context.Context, c *contententity.Content) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.content[c.ID]
	if !ok {
		return apperr.NotFoundf("content %s not found", c.ID)
	}
	cur.Value = c.Value
	cur.Description = c.Description
	cur.UpdatedAt = c.UpdatedAt
	s.content[c.ID] = cur
	*c = cur
	return nil
}

func (s *Store) DeleteContent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.content[id]
	if !ok {
		return apperr.NotFoundf("content %s not found", id)
	}
	delete(s.content, id)
	delete(s.contentKeys, c.Key)
	s.contentOrder = removeString(s.contentOrder, id)
	return nil
}

func removeString(xs []string, v string) []string {
	for i, x := range xs {
		if x == v {
			return append(xs[:i], xs[i+1:]...)
		}
	}
	return xs
}
