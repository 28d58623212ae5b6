package bmatch

import (
	"fmt"
	"sort"

	"github.com/relex/eventsink/base"
	"github.com/relex/gotils/logger"
	"golang.org/x/exp/maps"
)

// EntryMatcherConfig is the configuration for EntryMatcher, mapping field names to value matches
//
// Field names are "level", "providerName", "message", "eventId" or "payload.<key>"
type EntryMatcherConfig map[string]valueMatch

// NewMatcher creates an EntryMatcher with cheap conditions checked first
//
// The config must have been verified
func (cmap EntryMatcherConfig) NewMatcher() EntryMatcher {
	names := maps.Keys(cmap)
	sort.Slice(names, func(i, j int) bool {
		ci, cj := cmap[names[i]].cost, cmap[names[j]].cost
		if ci != cj {
			return ci < cj
		}
		return names[i] < names[j]
	})

	matches := make([]fieldMatch, 0, len(names))
	for _, name := range names {
		field, err := base.LookupEntryField(name)
		if err != nil {
			logger.Panicf("invalid match key '%s': %s", name, err.Error())
		}
		matches = append(matches, fieldMatch{field: field, match: cmap[name].match})
	}
	return EntryMatcher{matches}
}

// VerifyConfig checks all field names and values
func (cmap EntryMatcherConfig) VerifyConfig() error {
	for name, vm := range cmap {
		if _, err := base.LookupEntryField(name); err != nil {
			return fmt.Errorf("invalid match key '%s': %w", name, err)
		}
		if vm.match == nil { // empty value in map would not go through unmarshalling
			return fmt.Errorf("missing match value for '%s'", name)
		}
	}
	return nil
}
