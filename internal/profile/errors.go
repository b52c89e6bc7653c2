package profile

import "errors"

// ErrorKind tags the stage a cycle failed in. Values carry no payload and
// compare with == or errors.Is.
type ErrorKind int

// Stage failure kinds.
const (
	DocumentRequestFailed ErrorKind = iota + 1
	SelectorCompileFailed
	MetaTagNotFound
	ContentAttributeNotFound
	DelimiterNotFound
	TokenSplitFailed
	IntegerParseFailed
	InsufficientCounters
	OutputOpenFailed
	WriteFailed
	FlushFailed
	NotificationSendFailed
)

// Error returns the fixed display text for the kind.
func (k ErrorKind) Error() string {
	switch k {
	case DocumentRequestFailed:
		return "failed to fetch user profile"
	case SelectorCompileFailed:
		return "failed to compile selector pointing to the description tag; this shouldn't happen"
	case MetaTagNotFound:
		return "failed to find description tag using selector"
	case ContentAttributeNotFound:
		return "failed to get the description tag's content attribute"
	case DelimiterNotFound:
		return "failed to split the description tag's content in two"
	case TokenSplitFailed:
		return "failed to isolate a count in the description tag's content"
	case IntegerParseFailed:
		return "failed to parse a count in the description tag's content"
	case InsufficientCounters:
		return "not enough counts in the description tag's content"
	case OutputOpenFailed:
		return "failed to open output file"
	case WriteFailed:
		return "failed to write to output file"
	case FlushFailed:
		return "failed to flush output file"
	case NotificationSendFailed:
		return "failed to send message through webhook"
	default:
		return "unknown error; this is a bug"
	}
}

// Stage names the pipeline stage the kind belongs to. It is used as a
// metrics label and log field.
func (k ErrorKind) Stage() string {
	switch k {
	case DocumentRequestFailed:
		return "fetch"
	case SelectorCompileFailed, MetaTagNotFound, ContentAttributeNotFound:
		return "extract"
	case DelimiterNotFound, TokenSplitFailed, IntegerParseFailed, InsufficientCounters:
		return "parse"
	case OutputOpenFailed, WriteFailed, FlushFailed:
		return "persist"
	case NotificationSendFailed:
		return "notify"
	default:
		return "unknown"
	}
}

// KindOf returns the first ErrorKind found in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var kind ErrorKind
	if errors.As(err, &kind) {
		return kind, true
	}
	return 0, false
}
