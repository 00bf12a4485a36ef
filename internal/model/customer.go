package model

import "time"

type Customer struct {
	BaseModel
	Name              string  `db:"name" json:"name"`
	Phone             *string `db:"phone" json:"phone"`
	DefaultAddress    *string `db:"default_address" json:"default_address"`
	DefaultFulfillway *string `db:"default_fulfillway" json:"default_fulfillway"` // PICKUP or DELIVERY
	Notes             string  `db:"notes" json:"notes"`
	IsActive          bool    `db:"is_active" json:"is_active"`
}

// Risk tags feeding the policy resolver.
const (
	TagLate         = "LATE"
	TagDoNotAdvance = "DO_NOT_ADVANCE"
)

// CustomerTag is one live risk tag on a customer. Uniqueness per
// (customer_id, tag) is enforced by upsert, so there is never more than one
// row per pair.
type CustomerTag struct {
	ID         string     `db:"id" json:"id"`
	CustomerID string     `db:"customer_id" json:"customer_id"`
	Tag        string     `db:"tag" json:"tag"`
	Reason     *string    `db:"reason" json:"reason"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ExpiresAt  *time.Time `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the tag has gone stale as of now. Expiry is always
// judged against the clock at resolution time, never at creation time.
func (t CustomerTag) Expired(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}
