package entity

import (
	"time"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
)

// Status is the closed set of application states.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Statuses lists every recognized status in display order.
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

// ParseStatus converts raw input into a Status, rejecting anything outside
// the enumeration.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", apperr.Invalid("invalid status %q: must be one of pending, approved, rejected", s)
}

// Terminal reports whether s is a decided state.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Application is a loan request submitted through the bot. MFOName and
// UserName are snapshots taken at creation and never follow later renames.
type Application struct {
	ID             string    `db:"id" json:"id"`
	MFOID          string    `db:"mfo_id" json:"mfo_id"`
	MFOName        string    `db:"mfo_name" json:"mfo_name"`
	UserTelegramID int64     `db:"user_telegram_id" json:"user_telegram_id"`
	UserName       string    `db:"user_name" json:"user_name"`
	Amount         int64     `db:"amount" json:"amount"`
	Term           int       `db:"term" json:"term"`
	Phone          string    `db:"phone" json:"phone"`
	Status         Status    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// StatusChange is the audit record written with every transition.
type StatusChange struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"application_id"`
	From          Status    `db:"from_status" json:"from"`
	To            Status    `db:"to_status" json:"to"`
	AdminID       string    `db:"admin_id" json:"admin_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// Filter narrows a listing. A nil Status matches everything.
type Filter struct {
	Status *Status
}

// Matches reports whether a satisfies the filter.
func (f Filter) Matches(a Application) bool {
	return f.Status == nil || a.Status == *f.Status
}
