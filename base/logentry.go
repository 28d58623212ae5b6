package base

import (
	"time"
)

// LogEntry is one unit of log data posted by the application
//
// A LogEntry must not be modified after being posted to a sink
type LogEntry struct {
	Timestamp    time.Time
	Level        string
	ProviderName string
	EventID      int
	Message      string
	Payload      map[string]string // optional, nil if the entry carries no structured fields
}

// EntryContext is the static context attached to every entry of a sink
//
// It's set once at construction of sink and never changed
type EntryContext struct {
	DeploymentID string `yaml:"deploymentId"`
	RoleName     string `yaml:"roleName"`
	InstanceName string `yaml:"instanceName"`
}

// ExtendedEntry is a LogEntry enriched with EntryContext, to be serialized at flush time
type ExtendedEntry struct {
	LogEntry
	EntryContext
}

// Enrich attaches the context to the entry
func Enrich(entry LogEntry, context EntryContext) ExtendedEntry {
	return ExtendedEntry{
		LogEntry:     entry,
		EntryContext: context,
	}
}
