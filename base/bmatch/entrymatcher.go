package bmatch

import (
	"github.com/relex/eventsink/base"
)

// EntryMatcher can match log entries of certain conditions
//
// An empty matcher matches everything
type EntryMatcher struct {
	fieldMatches []fieldMatch
}

type fieldMatch struct {
	field base.EntryField
	match valueMatcher
}

// Match checks whether the given entry matches all the field conditions of this matcher
func (m EntryMatcher) Match(entry *base.LogEntry) bool {
	for _, fm := range m.fieldMatches {
		if !fm.match(fm.field.Get(entry)) {
			return false
		}
	}
	return true
}

// Empty returns true if the matcher has no condition
func (m EntryMatcher) Empty() bool {
	return len(m.fieldMatches) == 0
}
