package shared

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/relex/eventsink/base"
	"github.com/relex/gotils/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testEntry = base.Enrich(base.LogEntry{
	Timestamp:    time.Date(2022, 3, 4, 10, 30, 40, 500, time.FixedZone("EET", 2*3600)),
	Level:        "Warning",
	ProviderName: "MyService",
	EventID:      1001,
	Message:      "disk almost full",
	Payload:      map[string]string{"disk": "C:", "secret": "x"},
}, base.EntryContext{DeploymentID: "dep1", RoleName: "web", InstanceName: "web_IN_0"})

func TestJSONSerializer(t *testing.T) {
	s := NewJSONSerializer(logger.WithField("test", t.Name()), JSONSerializationConfig{})
	data, err := s.SerializeEntry(testEntry)
	require.NoError(t, err)
	assert.Equal(t, `{"timestamp":"2022-03-04T10:30:40.0000005+02:00","level":"Warning","providerName":"MyService",`+
		`"eventId":1001,"message":"disk almost full","payload":{"disk":"C:","secret":"x"},`+
		`"deploymentId":"dep1","roleName":"web","instanceName":"web_IN_0"}`, string(data))
}

func TestJSONSerializerHiddenAndUTC(t *testing.T) {
	s := NewJSONSerializer(logger.WithField("test", t.Name()), JSONSerializationConfig{
		HiddenPayloadFields: []string{"secret"},
		UTC:                 true,
	})
	data, err := s.SerializeEntry(testEntry)
	require.NoError(t, err)

	parsed := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, "2022-03-04T08:30:40.0000005Z", parsed["timestamp"])
	assert.Equal(t, map[string]interface{}{"disk": "C:"}, parsed["payload"])
	// original payload is untouched
	assert.Equal(t, "x", testEntry.Payload["secret"])
}

func TestGzipCompress(t *testing.T) {
	original := bytes.Repeat([]byte("hello world "), 100)
	compressed, err := GzipCompress(original)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(original))

	reader, err := gzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	decompressed, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, original, decompressed)
}
