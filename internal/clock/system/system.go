// Package system provides the wall clock used to stamp log lines.
package system

import "time"

// Clock implements profile.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC, truncated to whole seconds so log
// lines carry a stable RFC3339 width.
func (Clock) Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
