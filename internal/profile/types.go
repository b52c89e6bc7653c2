// Package profile defines the observation model and collaborator contracts
// shared by the scrape pipeline.
package profile

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// URLTemplate is the public profile page for a user.
const URLTemplate = "https://www.instagram.com/%s/"

// DefaultUserAgent identifies the agent to the profile host and to webhooks.
const DefaultUserAgent = "instascrape/1.0 (+https://github.com/JakeFAU/instascrape)"

// Observation is one parsed set of counters from a single successful cycle.
type Observation struct {
	Followers uint64 `json:"followers"`
	Following uint64 `json:"following"`
	Posts     uint64 `json:"posts"`
}

// String renders the observation for log lines and messages.
func (o Observation) String() string {
	return fmt.Sprintf("followers: %d, following: %d, posts: %d", o.Followers, o.Following, o.Posts)
}

// ProfileURL interpolates user into URLTemplate.
func ProfileURL(user string) string {
	return fmt.Sprintf(URLTemplate, url.PathEscape(user))
}

// Fetcher retrieves the raw profile document.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Recorder persists one observation.
type Recorder interface {
	Record(obs Observation) error
}

// Notifier delivers a text message to an external endpoint.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces cycle correlation IDs.
type IDGenerator interface {
	NewID() (string, error)
}
