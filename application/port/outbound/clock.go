package outbound

import "time"

// Clock abstracts the time source so expiry arithmetic is deterministic in
// tests.
type Clock interface {
	Now() time.Time
}
