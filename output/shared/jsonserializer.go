// Package shared contains serialization and client helpers shared by outputs
package shared

import (
	"encoding/json"
	"time"

	"github.com/relex/eventsink/base"
	"github.com/relex/gotils/logger"
	"golang.org/x/exp/slices"
)

// JSONSerializationConfig defines the serialization section of JSON-based outputs
type JSONSerializationConfig struct {
	HiddenPayloadFields []string `yaml:"hiddenPayloadFields"` // payload keys to be removed from output
	UTC                 bool     `yaml:"utc"`                 // convert timestamps to UTC
}

// jsonEntry defines the JSON layout of one entry, field order is preserved in output
type jsonEntry struct {
	Timestamp    string            `json:"timestamp"`
	Level        string            `json:"level"`
	ProviderName string            `json:"providerName,omitempty"`
	EventID      int               `json:"eventId"`
	Message      string            `json:"message"`
	Payload      map[string]string `json:"payload,omitempty"`
	DeploymentID string            `json:"deploymentId,omitempty"`
	RoleName     string            `json:"roleName,omitempty"`
	InstanceName string            `json:"instanceName,omitempty"`
}

type jsonSerializer struct {
	logger logger.Logger
	config JSONSerializationConfig
}

// NewJSONSerializer creates an EntrySerializer to serialize each entry as a JSON object
func NewJSONSerializer(parentLogger logger.Logger, config JSONSerializationConfig) base.EntrySerializer {
	return &jsonSerializer{
		logger: parentLogger,
		config: config,
	}
}

func (s *jsonSerializer) SerializeEntry(entry base.ExtendedEntry) ([]byte, error) {
	timestamp := entry.Timestamp
	if s.config.UTC {
		timestamp = timestamp.UTC()
	}
	data, err := json.Marshal(jsonEntry{
		Timestamp:    timestamp.Format(time.RFC3339Nano),
		Level:        entry.Level,
		ProviderName: entry.ProviderName,
		EventID:      entry.EventID,
		Message:      entry.Message,
		Payload:      s.filterPayload(entry.Payload),
		DeploymentID: entry.DeploymentID,
		RoleName:     entry.RoleName,
		InstanceName: entry.InstanceName,
	})
	if err != nil {
		return nil, base.NewSerializationError("json: %w", err)
	}
	return data, nil
}

func (s *jsonSerializer) filterPayload(payload map[string]string) map[string]string {
	if len(s.config.HiddenPayloadFields) == 0 || len(payload) == 0 {
		return payload
	}
	filtered := make(map[string]string, len(payload))
	for key, value := range payload {
		if slices.Contains(s.config.HiddenPayloadFields, key) {
			continue
		}
		filtered[key] = value
	}
	return filtered
}
