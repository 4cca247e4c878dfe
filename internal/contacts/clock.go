package contacts

import (
	"time"

	"github.com/benbjohnson/clock"
)

// Clock abstracts time.Now() to allow deterministic testing.
// Both clock.New() and clock.NewMock() satisfy it.
type Clock interface {
	Now() time.Time
}

var defaultClock Clock = clock.New()
