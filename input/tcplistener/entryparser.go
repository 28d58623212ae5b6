package tcplistener

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/relex/eventsink/base"
)

// Line formats
const (
	FormatJSON = "json"
	FormatText = "text"
)

var knownFormats = []string{FormatJSON, FormatText}

// entryParser converts one record, possibly multi-line, into a LogEntry
type entryParser interface {
	testRecordStart(line []byte) bool
	parse(record []byte) (base.LogEntry, error)
}

type jsonLine struct {
	Timestamp    *time.Time        `json:"timestamp"`
	Level        string            `json:"level"`
	ProviderName string            `json:"providerName"`
	EventID      int               `json:"eventId"`
	Message      string            `json:"message"`
	Payload      map[string]string `json:"payload"`
}

// jsonEntryParser parses one JSON object per record
//
// Missing fields are filled from defaults; a missing timestamp means the time of receiving
type jsonEntryParser struct {
	defaults base.LogEntry
	now      func() time.Time
}

func (p *jsonEntryParser) testRecordStart(line []byte) bool {
	return len(line) > 0 && line[0] == '{'
}

func (p *jsonEntryParser) parse(record []byte) (base.LogEntry, error) {
	var line jsonLine
	if err := json.Unmarshal(record, &line); err != nil {
		return base.LogEntry{}, fmt.Errorf("invalid JSON entry: %w", err)
	}
	entry := base.LogEntry{
		Level:        line.Level,
		ProviderName: line.ProviderName,
		EventID:      line.EventID,
		Message:      line.Message,
		Payload:      line.Payload,
	}
	if line.Timestamp != nil {
		entry.Timestamp = *line.Timestamp
	} else {
		entry.Timestamp = p.now()
	}
	if entry.Level == "" {
		entry.Level = p.defaults.Level
	}
	if entry.ProviderName == "" {
		entry.ProviderName = p.defaults.ProviderName
	}
	return entry, nil
}

// textEntryParser takes the whole record as message
//
// Lines starting with whitespace continue the previous record, e.g. stack traces
type textEntryParser struct {
	defaults base.LogEntry
	now      func() time.Time
}

func (p *textEntryParser) testRecordStart(line []byte) bool {
	if len(line) == 0 {
		return false
	}
	switch line[0] {
	case ' ', '\t', '\r', '\n':
		return false
	default:
		return true
	}
}

func (p *textEntryParser) parse(record []byte) (base.LogEntry, error) {
	if n := len(record); n > 0 && record[n-1] == '\r' {
		record = record[:n-1]
	}
	entry := p.defaults
	entry.Timestamp = p.now()
	entry.Message = string(record)
	return entry, nil
}

func newEntryParser(format string, defaults base.LogEntry) (entryParser, error) {
	switch format {
	case FormatJSON:
		return &jsonEntryParser{defaults: defaults, now: time.Now}, nil
	case FormatText:
		return &textEntryParser{defaults: defaults, now: time.Now}, nil
	default:
		return nil, fmt.Errorf("unsupported format '%s'", format)
	}
}
