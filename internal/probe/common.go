package probe

import (
	"regexp"
	"time"
)

// timeUntil returns the remaining duration until deadline, floored at a
// small positive value so callers never hand a library a zero or negative
// timeout (which several net/dns client APIs treat as "no timeout").
func timeUntil(deadline time.Time) time.Duration {
	d := time.Until(deadline)
	if d <= 0 {
		return time.Millisecond
	}
	return d
}

// anchoredMatcher matches a regular expression against the start of a
// string only, never requiring it to consume the whole string. The
// leftmost match must begin at index 0, unlike regexp.MatchString, which
// searches unanchored, and unlike a full-string match, which is anchored
// at both ends.
type anchoredMatcher struct {
	re *regexp.Regexp
}

func anchoredRegexp(pattern string) (*anchoredMatcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	return &anchoredMatcher{re: re}, nil
}

func (m *anchoredMatcher) MatchString(s string) bool {
	loc := m.re.FindStringIndex(s)
	return loc != nil && loc[0] == 0
}
