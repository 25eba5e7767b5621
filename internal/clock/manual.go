package clock

import (
	"sync"
	"time"
)

// Manual is a Clock and Sleeper whose time only moves when told to. Sleeping
// on a Manual clock jumps it forward to the deadline. It is meant for tests
// and offline runs.
type Manual struct {
	mu     sync.Mutex
	now    time.Duration
	sleeps []time.Duration
	fail   []error
}

// NewManual returns a Manual clock starting at start.
func NewManual(start time.Duration) *Manual {
	return &Manual{now: start}
}

func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// FailNext makes the next SleepUntil call return err without moving time.
func (m *Manual) FailNext(err error) {
	m.mu.Lock()
	m.fail = append(m.fail, err)
	m.mu.Unlock()
}

func (m *Manual) SleepUntil(deadline time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sleeps = append(m.sleeps, deadline)
	if len(m.fail) > 0 {
		err := m.fail[0]
		m.fail = m.fail[1:]
		return err
	}
	if deadline > m.now {
		m.now = deadline
	}
	return nil
}

// Deadlines returns every deadline passed to SleepUntil, in order.
func (m *Manual) Deadlines() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.sleeps))
	copy(out, m.sleeps)
	return out
}
