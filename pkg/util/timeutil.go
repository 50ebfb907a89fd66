package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
var NowUTC = func() time.Time {
	return time.Now().UTC()
}
