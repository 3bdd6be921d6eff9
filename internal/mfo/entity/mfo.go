package entity

import (
	"time"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/validation"
)

// MFO is a partner lender profile shown to bot users.
type MFO struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name" validate:"required,max=200"`
	Description  string    `db:"description" json:"description"`
	LogoURL      string    `db:"logo_url" json:"logo_url" validate:"omitempty,url"`
	WebsiteURL   string    `db:"website_url" json:"website_url" validate:"omitempty,url"`
	MinAmount    int64     `db:"min_amount" json:"min_amount" validate:"gt=0"`
	MaxAmount    int64     `db:"max_amount" json:"max_amount" validate:"gt=0,gtefield=MinAmount"`
	MinTerm      int       `db:"min_term" json:"min_term" validate:"gt=0"`
	MaxTerm      int       `db:"max_term" json:"max_term" validate:"gt=0,gtefield=MinTerm"`
	InterestRate float64   `db:"interest_rate" json:"interest_rate" validate:"gte=0"`
	ApprovalRate int       `db:"approval_rate" json:"approval_rate" validate:"gte=0,lte=100"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	Clicks       int64     `db:"clicks" json:"clicks"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Validate checks the invariants every stored MFO must satisfy.
func (m MFO) Validate() error {
	return validation.Struct(m)
}

// Patch is the set of admin-editable fields. Nil means "not supplied";
// the click counter is deliberately absent.
type Patch struct {
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	LogoURL      *string  `json:"logo_url,omitempty"`
	WebsiteURL   *string  `json:"website_url,omitempty"`
	MinAmount    *int64   `json:"min_amount,omitempty"`
	MaxAmount    *int64   `json:"max_amount,omitempty"`
	MinTerm      *int     `json:"min_term,omitempty"`
	MaxTerm      *int     `json:"max_term,omitempty"`
	InterestRate *float64 `json:"interest_rate,omitempty"`
	ApprovalRate *int     `json:"approval_rate,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// Empty reports whether no field was supplied.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply merges the supplied fields into m.
func (p Patch) Apply(m *MFO) {
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Description != nil {
		m.Description = *p.Description
	}
	if p.LogoURL != nil {
		m.LogoURL = *p.LogoURL
	}
	if p.WebsiteURL != nil {
		m.WebsiteURL = *p.WebsiteURL
	}
	if p.MinAmount != nil {
		m.MinAmount = *p.MinAmount
	}
	if p.MaxAmount != nil {
		m.MaxAmount = *p.MaxAmount
	}
	if p.MinTerm != nil {
		m.MinTerm = *p.MinTerm
	}
	if p.MaxTerm != nil {
		m.MaxTerm = *p.MaxTerm
	}
	if p.InterestRate != nil {
		m.InterestRate = *p.InterestRate
	}
	if p.ApprovalRate != nil {
		m.ApprovalRate = *p.ApprovalRate
	}
	if p.IsActive != nil {
		m.IsActive = *p.IsActive
	}
}

// Defaults is the starting point for a new MFO before the create body is
// merged in: active, no logo, no clicks.
func Defaults() MFO {
	return MFO{IsActive: true}
}

// Click is one referral-link follow recorded for day-bucketed analytics.
type Click struct {
	ID         string    `db:"id" json:"id"`
	MFOID      string    `db:"mfo_id" json:"mfo_id"`
	TelegramID *int64    `db:"telegram_id" json:"telegram_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
