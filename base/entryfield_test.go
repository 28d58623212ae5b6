package base

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryField(t *testing.T) {
	entry := LogEntry{Level: "Error", ProviderName: "Orders", EventID: 12, Message: "failed", Payload: map[string]string{"user": "u1"}}

	for name, expected := range map[string]string{
		"level":        "Error",
		"providerName": "Orders",
		"eventId":      "12",
		"message":      "failed",
		"payload.user": "u1",
		"payload.none": "",
	} {
		field, err := LookupEntryField(name)
		if assert.NoError(t, err, name) {
			assert.Equal(t, expected, field.Get(&entry), name)
		}
	}

	msg, _ := LookupEntryField("message")
	assert.True(t, msg.Set(&entry, "retried"))
	assert.Equal(t, "retried", entry.Message)

	user, _ := LookupEntryField("payload.user")
	assert.True(t, user.Set(&entry, "u2"))
	none, _ := LookupEntryField("payload.none")
	assert.True(t, none.Set(&entry, "x"))
	assert.Equal(t, map[string]string{"user": "u2"}, entry.Payload)

	eventID, _ := LookupEntryField("eventId")
	assert.False(t, eventID.Writable())
	assert.False(t, eventID.Set(&entry, "13"))

	_, err := LookupEntryField("thread")
	assert.EqualError(t, err, "unknown field")
	_, err = LookupEntryField("payload.")
	assert.EqualError(t, err, "empty payload key")
}
