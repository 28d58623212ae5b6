package base

import (
	"fmt"
	"strconv"
	"strings"
)

// PayloadFieldPrefix is the prefix of field names referring to a payload key, e.g. "payload.userId"
const PayloadFieldPrefix = "payload."

// EntryField provides access to a named string field of LogEntry, for matching and transforming at input
//
// Valid names are "level", "providerName", "message", "eventId" and "payload.<key>"
type EntryField struct {
	Name string
	get  func(entry *LogEntry) string
	set  func(entry *LogEntry, value string) // nil if read-only
}

// Get returns the value of field, or empty string for missing payload keys
func (field EntryField) Get(entry *LogEntry) string {
	return field.get(entry)
}

// Set updates the field of a LogEntry which hasn't been posted yet
//
// Returns false if the field is read-only
func (field EntryField) Set(entry *LogEntry, value string) bool {
	if field.set == nil {
		return false
	}
	field.set(entry, value)
	return true
}

// Writable tells whether the field can be updated
func (field EntryField) Writable() bool {
	return field.set != nil
}

// LookupEntryField finds the accessor of a named field
func LookupEntryField(name string) (EntryField, error) {
	switch name {
	case "level":
		return EntryField{name, func(e *LogEntry) string { return e.Level }, func(e *LogEntry, v string) { e.Level = v }}, nil
	case "providerName":
		return EntryField{name, func(e *LogEntry) string { return e.ProviderName }, func(e *LogEntry, v string) { e.ProviderName = v }}, nil
	case "message":
		return EntryField{name, func(e *LogEntry) string { return e.Message }, func(e *LogEntry, v string) { e.Message = v }}, nil
	case "eventId":
		return EntryField{name, func(e *LogEntry) string { return strconv.Itoa(e.EventID) }, nil}, nil
	}
	if !strings.HasPrefix(name, PayloadFieldPrefix) {
		return EntryField{}, fmt.Errorf("unknown field")
	}
	key := name[len(PayloadFieldPrefix):]
	if key == "" {
		return EntryField{}, fmt.Errorf("empty payload key")
	}
	return EntryField{
		Name: name,
		get:  func(e *LogEntry) string { return e.Payload[key] },
		set: func(e *LogEntry, v string) {
			if _, exists := e.Payload[key]; exists {
				e.Payload[key] = v
			}
		},
	}, nil
}
