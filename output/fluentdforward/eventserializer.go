package fluentdforward

import (
	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/output/fastmsgpack"
	"github.com/relex/gotils/logger"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	keyLevel        = "level"
	keyProviderName = "providerName"
	keyEventID      = "eventId"
	keyMessage      = "message"
	keyPayload      = "payload"
	keyEnvironment  = "environment"
	keyDeploymentID = "deploymentId"
	keyRoleName     = "roleName"
	keyInstanceName = "instanceName"
)

type eventSerializer struct {
	logger logger.Logger
	config SerializationConfig
}

// NewEventSerializer creates an EntrySerializer to serialize entries into fluentd's EventEntry: [EventTime, record]
//
// The record contains fixed fields, with the entry context nested as "environment" and the payload nested as "payload"
func NewEventSerializer(parentLogger logger.Logger, config SerializationConfig) base.EntrySerializer {
	return &eventSerializer{
		logger: parentLogger.WithField(defs.LabelComponent, "FluentdForwardEventSerializer"),
		config: config,
	}
}

func (s *eventSerializer) SerializeEntry(entry base.ExtendedEntry) ([]byte, error) {
	payloadKeys := s.payloadKeys(entry.Payload)

	numFields := 5
	if len(payloadKeys) > 0 {
		numFields++
	}
	// calculate the exact length to allocate once
	size := fastmsgpack.SizeOfCollectionLen(2) + fastmsgpack.SizeOfEventTime + fastmsgpack.SizeOfCollectionLen(numFields)
	size += fastmsgpack.SizeOfString(keyLevel) + fastmsgpack.SizeOfString(entry.Level)
	size += fastmsgpack.SizeOfString(keyProviderName) + fastmsgpack.SizeOfString(entry.ProviderName)
	size += fastmsgpack.SizeOfString(keyEventID) + fastmsgpack.SizeOfInt(int64(entry.EventID))
	size += fastmsgpack.SizeOfString(keyMessage) + fastmsgpack.SizeOfString(entry.Message)
	size += fastmsgpack.SizeOfString(keyEnvironment) + fastmsgpack.SizeOfCollectionLen(3)
	size += fastmsgpack.SizeOfString(keyDeploymentID) + fastmsgpack.SizeOfString(entry.DeploymentID)
	size += fastmsgpack.SizeOfString(keyRoleName) + fastmsgpack.SizeOfString(entry.RoleName)
	size += fastmsgpack.SizeOfString(keyInstanceName) + fastmsgpack.SizeOfString(entry.InstanceName)
	if len(payloadKeys) > 0 {
		size += fastmsgpack.SizeOfString(keyPayload) + fastmsgpack.SizeOfCollectionLen(len(payloadKeys))
		for _, key := range payloadKeys {
			size += fastmsgpack.SizeOfString(key) + fastmsgpack.SizeOfString(entry.Payload[key])
		}
	}

	buffer := make([]byte, size)
	pos := fastmsgpack.EncodeArrayLen(buffer, 0, 2)
	pos = fastmsgpack.EncodeEventTime(buffer, pos, entry.Timestamp)
	pos = fastmsgpack.EncodeMapLen(buffer, pos, numFields)
	pos = encodeStringField(buffer, pos, keyLevel, entry.Level)
	pos = encodeStringField(buffer, pos, keyProviderName, entry.ProviderName)
	pos = fastmsgpack.EncodeString(buffer, pos, keyEventID)
	pos = fastmsgpack.EncodeInt(buffer, pos, int64(entry.EventID))
	pos = encodeStringField(buffer, pos, keyMessage, entry.Message)
	pos = fastmsgpack.EncodeString(buffer, pos, keyEnvironment)
	pos = fastmsgpack.EncodeMapLen(buffer, pos, 3)
	pos = encodeStringField(buffer, pos, keyDeploymentID, entry.DeploymentID)
	pos = encodeStringField(buffer, pos, keyRoleName, entry.RoleName)
	pos = encodeStringField(buffer, pos, keyInstanceName, entry.InstanceName)
	if len(payloadKeys) > 0 {
		pos = fastmsgpack.EncodeString(buffer, pos, keyPayload)
		pos = fastmsgpack.EncodeMapLen(buffer, pos, len(payloadKeys))
		for _, key := range payloadKeys {
			pos = encodeStringField(buffer, pos, key, entry.Payload[key])
		}
	}
	if pos != len(buffer) {
		return nil, base.NewSerializationError("BUG: encoded length %d != calculated %d", pos, len(buffer))
	}
	return buffer, nil
}

// payloadKeys returns visible payload keys in sorted order
func (s *eventSerializer) payloadKeys(payload map[string]string) []string {
	if len(payload) == 0 {
		return nil
	}
	keys := maps.Keys(payload)
	if len(s.config.HiddenPayloadFields) > 0 {
		visible := keys[:0]
		for _, key := range keys {
			if !slices.Contains(s.config.HiddenPayloadFields, key) {
				visible = append(visible, key)
			}
		}
		keys = visible
	}
	slices.Sort(keys)
	return keys
}

func encodeStringField(buffer []byte, start int, key string, value string) int { // xx:inline
	pos := fastmsgpack.EncodeString(buffer, start, key)
	return fastmsgpack.EncodeString(buffer, pos, value)
}
