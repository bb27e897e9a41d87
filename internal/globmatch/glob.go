// Package globmatch implements the single-wildcard URL glob used by the
// network interception rule set (C5). wait_for_url does not use it: it
// matches a plain substring of the URL.
//
// Only '*' is a metacharacter, matching zero or more characters of any
// kind. The match is anchored on both ends: the whole subject must match,
// not a substring.
package globmatch

import "strings"

// Match reports whether subject matches pattern, anchored on both ends,
// with '*' matching any run of zero or more characters.
func Match(pattern, subject string) bool {
	segments := strings.Split(pattern, "*")
	if len(segments) == 1 {
		return pattern == subject
	}

	rest := subject

	first := segments[0]
	if !strings.HasPrefix(rest, first) {
		return false
	}
	rest = rest[len(first):]

	last := segments[len(segments)-1]
	middle := segments[1 : len(segments)-1]

	for _, seg := range middle {
		if seg == "" {
			continue
		}
		idx := strings.Index(rest, seg)
		if idx == -1 {
			return false
		}
		rest = rest[idx+len(seg):]
	}

	return strings.HasSuffix(rest, last) && len(rest) >= len(last)
}
