package test

import (
	"bytes"
	"encoding/json"
	"os"
	"time"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/util"
	"github.com/relex/gotils/logger"
)

var recordSeparator = []byte("\n{")

// loadInput loads sample JSON-lines files into raw data block that can be fed to TCP input, and also counts the records (NOT lines)
//
// A record starts with a line beginning with '{' and may continue on following lines
func loadInput(inputPath string) ([]byte, int) {
	pathList, gerr := util.ListFiles(inputPath)
	if gerr != nil {
		logger.Fatal(gerr)
	} else if len(pathList) == 0 {
		logger.Fatal("no input files")
	}
	data := make([]byte, 0)
	numRecords := 0
	for _, path := range pathList {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Fatalf("error reading %s: %v", path, err)
		}
		if len(content) == 0 {
			continue
		}
		n := bytes.Count(content, recordSeparator) + 1
		data = append(data, content...)
		numRecords += n
		logger.Infof("loaded %s: %d records, %d bytes", path, n, len(content))
	}
	return data, numRecords
}

// loadInputEntries loads sample JSON-lines files into entries to be posted directly
func loadInputEntries(inputPath string) []base.LogEntry {
	data, numRecords := loadInput(inputPath)
	entries := make([]base.LogEntry, 0, numRecords)
	remaining := bytes.TrimSuffix(data, []byte("\n"))
	for len(remaining) > 0 {
		record := remaining
		if next := bytes.Index(remaining, recordSeparator); next >= 0 {
			record = remaining[:next]
			remaining = remaining[next+1:]
		} else {
			remaining = nil
		}
		entries = append(entries, parseInputRecord(record))
	}
	return entries
}

func parseInputRecord(record []byte) base.LogEntry {
	var fields struct {
		Timestamp    time.Time         `json:"timestamp"`
		Level        string            `json:"level"`
		ProviderName string            `json:"providerName"`
		EventID      int               `json:"eventId"`
		Message      string            `json:"message"`
		Payload      map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(record, &fields); err != nil {
		logger.Fatalf("invalid record %q: %v", record, err)
	}
	return base.LogEntry{
		Timestamp:    fields.Timestamp,
		Level:        fields.Level,
		ProviderName: fields.ProviderName,
		EventID:      fields.EventID,
		Message:      fields.Message,
		Payload:      fields.Payload,
	}
}
