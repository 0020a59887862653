package data

import (
	"sync/atomic"
	"time"
)

// TimeProvider is the clock the services read. Options structs take its Now method.
type TimeProvider interface {
	Now() time.Time
}

// RealTimeProvider reads the wall clock in UTC so SharePoint filters and
// Redis TTLs agree on the zone.
type RealTimeProvider struct{}

func (RealTimeProvider) Now() time.Time { return time.Now().UTC() }

// FixedTimeProvider is a manually driven clock for tests. It is safe to
// advance from one goroutine while another reads it.
type FixedTimeProvider struct {
	at atomic.Pointer[time.Time]
}

func NewFixedTimeProvider(t time.Time) *FixedTimeProvider {
	p := &FixedTimeProvider{}
	p.Set(t)
	return p
}

func (p *FixedTimeProvider) Now() time.Time { return *p.at.Load() }

// Set jumps the clock to t.
func (p *FixedTimeProvider) Set(t time.Time) { p.at.Store(&t) }

// Advance moves the clock forward by d and returns the new time.
func (p *FixedTimeProvider) Advance(d time.Duration) time.Time {
	for {
		cur := p.at.Load()
		next := cur.Add(d)
		if p.at.CompareAndSwap(cur, &next) {
			return next
		}
	}
}
