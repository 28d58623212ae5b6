package fluentdforward

import (
	"bytes"
	"testing"
	"time"

	"github.com/relex/eventsink/base"
	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v4"
)

var testContext = base.EntryContext{DeploymentID: "dep1", RoleName: "web", InstanceName: "web_IN_0"}

var testEntries = []base.LogEntry{
	{
		Timestamp:    time.Date(2010, 12, 1, 10, 30, 40, 50, time.UTC),
		Level:        "Information",
		ProviderName: "MyApp",
		EventID:      1,
		Message:      "Hello World",
	},
	{
		Timestamp:    time.Date(2020, 12, 1, 10, 30, 40, 60, time.UTC),
		Level:        "Error",
		ProviderName: "MyApp",
		EventID:      50000,
		Message:      "account foo logged in",
		Payload:      map[string]string{"user": "foo", "password": "bar", "ip": "10.0.0.1"},
	},
}

func serializeTestEntries(t *testing.T, serializer base.EntrySerializer) base.Batch {
	batch := base.Batch{ID: "0000000001-0001.ff"}
	for _, entry := range testEntries {
		data, err := serializer.SerializeEntry(base.Enrich(entry, testContext))
		require.NoError(t, err)
		batch.Append(base.SerializedEntry{Data: data})
	}
	return batch
}

func TestEventSerializer(t *testing.T) {
	serializer := NewEventSerializer(logger.WithField("test", t.Name()), SerializationConfig{
		HiddenPayloadFields: []string{"password"},
	})
	batch := serializeTestEntries(t, serializer)

	for i, serialized := range batch.Entries {
		decoder := msgpack.NewDecoder(bytes.NewBuffer(serialized.Data))
		var event forwardprotocol.EventEntry
		require.NoError(t, decoder.Decode(&event), "entry[%d]", i)
		_, err := decoder.DecodeInterface()
		assert.EqualError(t, err, "EOF", "entry[%d]", i)

		original := testEntries[i]
		assert.Equal(t, original.Timestamp.UnixNano(), event.Time.UnixNano(), "entry[%d]", i)
		assert.Equal(t, original.Level, event.Record["level"], "entry[%d]", i)
		assert.Equal(t, original.ProviderName, event.Record["providerName"], "entry[%d]", i)
		assert.EqualValues(t, original.EventID, event.Record["eventId"], "entry[%d]", i)
		assert.Equal(t, original.Message, event.Record["message"], "entry[%d]", i)
		assert.Equal(t, map[string]interface{}{
			"deploymentId": "dep1",
			"roleName":     "web",
			"instanceName": "web_IN_0",
		}, event.Record["environment"], "entry[%d]", i)
	}

	var first forwardprotocol.EventEntry
	require.NoError(t, msgpack.Unmarshal(batch.Entries[0].Data, &first))
	assert.NotContains(t, first.Record, "payload")

	var second forwardprotocol.EventEntry
	require.NoError(t, msgpack.Unmarshal(batch.Entries[1].Data, &second))
	assert.Equal(t, map[string]interface{}{"ip": "10.0.0.1", "user": "foo"}, second.Record["payload"])
}

func TestEventSerializerLongValues(t *testing.T) {
	serializer := NewEventSerializer(logger.WithField("test", t.Name()), SerializationConfig{})
	payload := make(map[string]string, 20)
	for i := 0; i < 20; i++ {
		payload[string(rune('a'+i))] = string(bytes.Repeat([]byte{'x'}, 300))
	}
	long := string(bytes.Repeat([]byte("0123456789"), 7000))
	data, err := serializer.SerializeEntry(base.Enrich(base.LogEntry{Message: long, EventID: -1, Payload: payload}, testContext))
	require.NoError(t, err)

	var event forwardprotocol.EventEntry
	require.NoError(t, msgpack.Unmarshal(data, &event))
	assert.Equal(t, long, event.Record["message"])
	assert.EqualValues(t, -1, event.Record["eventId"])
	assert.Len(t, event.Record["payload"], 20)
}
