package schedule

import "time"

// Clock supplies the current instant. All checks inside a single validation
// call must reuse one reading so comparisons cannot tear.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant. Used in tests.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }
