package base

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEnrich(t *testing.T) {
	entry := LogEntry{
		Timestamp:    time.Date(2022, 7, 1, 10, 20, 30, 0, time.UTC),
		Level:        "Warning",
		ProviderName: "orders",
		EventID:      42,
		Message:      "slow query",
	}
	context := EntryContext{DeploymentID: "d-1", RoleName: "api", InstanceName: "api_IN_0"}

	extended := Enrich(entry, context)
	assert.Equal(t, entry, extended.LogEntry)
	assert.Equal(t, "d-1", extended.DeploymentID)
	assert.Equal(t, "api", extended.RoleName)
	assert.Equal(t, "api_IN_0", extended.InstanceName)
	assert.Equal(t, "slow query", extended.Message)
}

func TestBatchAppend(t *testing.T) {
	batch := Batch{ID: "b1", PartitionKey: "p"}
	batch.Append(SerializedEntry{Data: []byte("abc"), PartitionKey: "p"})
	batch.Append(SerializedEntry{Data: []byte("de"), PartitionKey: "p"})
	assert.Equal(t, 2, batch.Len())
	assert.Equal(t, 5, batch.NumBytes)
	assert.Equal(t, "id=b1 entries=2 len=5 key=p", batch.String())
}
