package admin

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/admin/entity"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/store"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/token"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/validation"
	"github.com/ovaphlow/pitchfork/service-mfo-admin/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// DefaultBcryptCost is used when BcryptHasher.Cost is zero.
const DefaultBcryptCost = 12

// maxPasswordBytes is bcrypt's input limit. It counts bytes, not runes.
const maxPasswordBytes = 72

var errPasswordTooLong = apperr.Invalid("password must be at most %d bytes", maxPasswordBytes)

// BcryptHasher implementation. CompareHashAndPassword is constant-time.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errPasswordTooLong
		}
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

var ErrBadCredentials = apperr.Unauthorizedf("invalid email or password")

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name" validate:"required,max=200"`
}

// LoginInput is the body of POST /api/auth/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session is returned by register and login.
type Session struct {
	Token string        `json:"token"`
	Admin *entity.Admin `json:"admin"`
}

// Service orchestrates registration, login and token validation.
type Service struct {
	store  store.AdminStore
	hasher PasswordHasher
	tokens *token.Issuer
	clock  clockwork.Clock
	logger *zap.SugaredLogger

	dummyOnce sync.Once
	dummyHash string
}

func NewService(st store.AdminStore, tokens *token.Issuer, hasher PasswordHasher, clock clockwork.Clock, logger *zap.SugaredLogger) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{store: st, hasher: hasher, tokens: tokens, clock: clock, logger: logger}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Register creates an admin and opens a session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, errPasswordTooLong
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	a := &entity.Admin{
		ID:           utilities.NewSnowflakeID(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.store.CreateAdmin(ctx, a); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			return nil, apperr.Conflictf("email already registered")
		}
		return nil, err
	}
	s.logger.Infow("admin registered", "admin_id", a.ID)
	return s.session(a)
}

// Login verifies credentials. Unknown emails still pay for one bcrypt
// comparison so response time does not reveal which emails exist.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	a, err := s.store.GetAdminByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.hasher.Verify(s.dummy(), in.Password)
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !s.hasher.Verify(a.PasswordHash, in.Password) {
		s.logger.Debugw("login failed", "admin_id", a.ID)
		return nil, ErrBadCredentials
	}
	return s.session(a)
}

// Authenticate resolves a bearer token to a live admin.
func (s *Service) Authenticate(ctx context.Context, raw string) (*entity.Admin, error) {
	id, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	a, err := s.store.GetAdmin(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.Unauthorizedf("admin no longer exists")
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) session(a *entity.Admin) (*Session, error) {
	tok, _, err := s.tokens.Issue(a.ID)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, Admin: a}, nil
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(utilities.NewKSUID())
		if err != nil {
			s.logger.Warnw("dummy hash failed", "err", err)
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
