package entity

import "time"

// Content is a keyed text fragment rendered by the bot. Key is immutable
// after creation.
type Content struct {
	ID          string    `db:"id" json:"id"`
	Key         string    `db:"key" json:"key"`
	Value       string    `db:"value" json:"value"`
	Description string    `db:"description" json:"description"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Patch carries the optional fields of an update. Key is accepted only so
// the service can reject attempts to change it.
type Patch struct {
	Key         *string `json:"key,omitempty"`
	Value       *string `json:"value,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Empty reports whether no field was supplied.
func (p Patch) Empty() bool {
	return p.Key == nil && p.Value == nil && p.Description == nil
}

// Apply merges the supplied fields into c.
func (p Patch) Apply(c *Content) {
	if p.Value != nil {
		c.Value = *p.Value
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}
