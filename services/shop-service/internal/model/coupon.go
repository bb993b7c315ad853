package model

import "time"

// Coupon is a flat percent-off code. ExpiresAt zero means no expiry.
type Coupon struct {
	Code      string
	Percent   int
	Active    bool
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (c Coupon) Usable(now time.Time) bool {
	if !c.Active {
		return false
	}
	if !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt) {
		return false
	}
	return c.Percent > 0 && c.Percent <= 100
}
