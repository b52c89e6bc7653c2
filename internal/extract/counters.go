package extract

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JakeFAU/instascrape/internal/profile"
)

// minCounters is the number of leading counts mapped onto an Observation.
const minCounters = 3

// ParseCounters turns description text such as
// "114 Followers, 128 Following, 29 Posts - See Instagram photos ..." into an
// Observation. Counts are mapped by position: followers, following, posts.
// Counts past the third are ignored.
func ParseCounters(content string) (profile.Observation, error) {
	content = strings.TrimSpace(content)

	idx := strings.IndexByte(content, '-')
	if idx < 0 {
		return profile.Observation{}, profile.DelimiterNotFound
	}

	fragments := strings.Split(content[:idx], ",")
	counts := make([]uint64, 0, len(fragments))
	for _, fragment := range fragments {
		token, err := leadingToken(fragment)
		if err != nil {
			return profile.Observation{}, err
		}
		n, err := strconv.ParseUint(token, 10, 64)
		if err != nil {
			return profile.Observation{}, fmt.Errorf("%w: %w", profile.IntegerParseFailed, err)
		}
		counts = append(counts, n)
	}

	if len(counts) < minCounters {
		return profile.Observation{}, profile.InsufficientCounters
	}
	return profile.Observation{
		Followers: counts[0],
		Following: counts[1],
		Posts:     counts[2],
	}, nil
}

// leadingToken returns the text of a trimmed fragment up to its first space,
// e.g. "100" from " 100 Followers". A fragment with no space has no unit word
// and is rejected.
func leadingToken(fragment string) (string, error) {
	fragment = strings.TrimSpace(fragment)
	token, _, found := strings.Cut(fragment, " ")
	if !found || token == "" {
		return "", profile.TokenSplitFailed
	}
	return token, nil
}
