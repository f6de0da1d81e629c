// Package clock abstracts "now" so date-boundary logic is testable with a
// fixed instant.
package clock

import (
	"time"

	"go.uber.org/fx"
)

// Clock supplies the current instant. Production code must never call
// time.Now directly; tracked durations and month windows depend on it.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// NewSystemClock returns the wall clock in UTC.
func NewSystemClock() Clock { return systemClock{} }

// Module provides the system clock.
var Module = fx.Module("clock",
	fx.Provide(NewSystemClock),
)
