package tcplistener

import (
	"testing"
	"time"

	"github.com/relex/eventsink/base"
	"github.com/stretchr/testify/assert"
)

func TestJSONEntryParser(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &jsonEntryParser{defaults: base.LogEntry{Level: "Information", ProviderName: "App"}, now: func() time.Time { return now }}

	assert.True(t, p.testRecordStart([]byte(`{"message":"x"}`)))
	assert.False(t, p.testRecordStart([]byte(`  "message": "x"`)))

	entry, err := p.parse([]byte(`{"level":"Error","eventId":12,"message":"failed"}`))
	if assert.NoError(t, err) {
		assert.Equal(t, base.LogEntry{Timestamp: now, Level: "Error", ProviderName: "App", EventID: 12, Message: "failed"}, entry)
	}

	_, err = p.parse([]byte(`{"eventId":"twelve"}`))
	assert.ErrorContains(t, err, "invalid JSON entry")
}

func TestTextEntryParser(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	p := &textEntryParser{defaults: base.LogEntry{Level: "Warning", ProviderName: "App"}, now: func() time.Time { return now }}

	assert.True(t, p.testRecordStart([]byte("Started")))
	assert.False(t, p.testRecordStart([]byte("\tat Foo()")))
	assert.False(t, p.testRecordStart([]byte(" at Foo()")))
	assert.False(t, p.testRecordStart(nil))
	assert.False(t, p.testRecordStart([]byte("\n\nStarted")))

	entry, err := p.parse([]byte("Started\r"))
	if assert.NoError(t, err) {
		assert.Equal(t, base.LogEntry{Timestamp: now, Level: "Warning", ProviderName: "App", Message: "Started"}, entry)
	}

	_, err = newEntryParser("xml", base.LogEntry{})
	assert.EqualError(t, err, "unsupported format 'xml'")
}
