package notify

import (
	"fmt"
	"strings"
	"time"

	"github.com/JakeFAU/instascrape/internal/profile"
	"github.com/JakeFAU/instascrape/internal/record"
)

// SuccessMessage renders the record line for obs plus the counters the log
// file does not carry.
func SuccessMessage(ts time.Time, obs profile.Observation) string {
	line := strings.TrimSuffix(record.FormatLine(ts, obs), "\n")
	return fmt.Sprintf("%s (following: %d, posts: %d)", line, obs.Following, obs.Posts)
}

// FailureMessage renders a stage failure for user. Only the kind's display
// text is included; causes stay in the logs.
func FailureMessage(user string, err error) string {
	text := err.Error()
	if kind, ok := profile.KindOf(err); ok {
		text = kind.Error()
	}
	return fmt.Sprintf("failed to scrape @%s: %s", user, text)
}
