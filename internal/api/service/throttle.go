package service

import (
	"time"

	"github.com/aussiebroadwan/storefront/internal/api/domain"
)

// Tier locks an account for Lockout once the attempt being made is at
// least the Attempts-th one since the last success.
type Tier struct {
	Attempts int
	Lockout  time.Duration
}

// Policy throttles password and code attempts per account. Tiers must be
// ordered by Attempts.
type Policy struct {
	Tiers []Tier
}

// DefaultPolicy allows three free attempts, then one per minute, and one
// per hour from the tenth.
var DefaultPolicy = Policy{Tiers: []Tier{
	{Attempts: 4, Lockout: time.Minute},
	{Attempts: 10, Lockout: time.Hour},
}}

// Lockout returns how long an account must wait after its last attempt
// before making the attempts-th one.
func (p Policy) Lockout(attempts int) time.Duration {
	var d time.Duration
	for _, t := range p.Tiers {
		if attempts >= t.Attempts {
			d = t.Lockout
		}
	}
	return d
}

// Check returns ErrTooManyAttempts when an account with stored failed
// attempts, the last one at last, may not try again at now.
func (p Policy) Check(stored int, last *time.Time, now time.Time) error {
	d := p.Lockout(stored + 1)
	if d == 0 || last == nil {
		return nil
	}
	if now.Sub(*last) < d {
		return ErrTooManyAttempts
	}
	return nil
}

// RecordFailure counts a failed attempt made at now.
func RecordFailure(u *domain.User, now time.Time) {
	now = now.UTC()
	u.LoginAttempts++
	u.LastLoginAttemptAt = &now
}

// RecordSuccess resets the counter. The timestamp is left alone.
func RecordSuccess(u *domain.User) {
	u.LoginAttempts = 0
}
