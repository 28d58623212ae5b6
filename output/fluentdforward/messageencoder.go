package fluentdforward

import (
	"bytes"
	"fmt"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/output/shared"
	"github.com/relex/fluentlib/protocol/forwardprotocol"
	"github.com/vmihailenco/msgpack/v4"
)

// messageBufferCapacity is the initial capacity for buffers used for message and compression
const messageBufferCapacity = 1 * 1024 * 1024

// messageEncoder encodes batches into Forward messages: [tag, entries, option]
//
// Buffers are reused and the result of Encode is only valid until the next call
type messageEncoder struct {
	mode                 forwardprotocol.MessageMode
	reusedStreamBuffer   *bytes.Buffer    // buffer for concatenated or compressed entries
	reusedMessageBuffer  *bytes.Buffer    // buffer for final message
	reusedMessageEncoder *msgpack.Encoder // encoder for final message
}

func newMessageEncoder(mode forwardprotocol.MessageMode) (*messageEncoder, error) {
	switch mode {
	case forwardprotocol.ModeForward:
	case forwardprotocol.ModePackedForward:
	case forwardprotocol.ModeCompressedPackedForward:
	default:
		return nil, fmt.Errorf("unsupported message mode: %s", mode)
	}
	msgBuffer := bytes.NewBuffer(make([]byte, 0, messageBufferCapacity))
	return &messageEncoder{
		mode:                 mode,
		reusedStreamBuffer:   bytes.NewBuffer(make([]byte, 0, messageBufferCapacity)),
		reusedMessageBuffer:  msgBuffer,
		reusedMessageEncoder: msgpack.NewEncoder(msgBuffer),
	}, nil
}

// Encode encodes the batch as a Forward message with the batch ID as chunk option for ACK
func (enc *messageEncoder) Encode(tag string, batch base.Batch) ([]byte, error) {
	enc.reusedStreamBuffer.Reset()
	enc.reusedMessageBuffer.Reset()
	encoder := enc.reusedMessageEncoder

	// root array
	if err := encoder.EncodeArrayLen(3); err != nil {
		return nil, err
	}

	// root[0]: tag
	if err := encoder.EncodeString(tag); err != nil {
		return nil, err
	}

	// root[1]: stream of log events
	option := forwardprotocol.TransportOption{
		Size:       batch.Len(),
		Chunk:      batch.ID,
		Compressed: "",
	}
	switch enc.mode {
	case forwardprotocol.ModeForward:
		// each entry is already a msgpack object
		if err := encoder.EncodeArrayLen(batch.Len()); err != nil {
			return nil, err
		}
		for _, entry := range batch.Entries {
			enc.reusedMessageBuffer.Write(entry.Data)
		}
	case forwardprotocol.ModePackedForward:
		for _, entry := range batch.Entries {
			enc.reusedStreamBuffer.Write(entry.Data)
		}
		if err := encoder.EncodeBytes(enc.reusedStreamBuffer.Bytes()); err != nil {
			return nil, err
		}
	case forwardprotocol.ModeCompressedPackedForward:
		var stream bytes.Buffer
		stream.Grow(batch.NumBytes)
		for _, entry := range batch.Entries {
			stream.Write(entry.Data)
		}
		if err := shared.GzipCompressTo(enc.reusedStreamBuffer, stream.Bytes()); err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		if err := encoder.EncodeBytes(enc.reusedStreamBuffer.Bytes()); err != nil {
			return nil, err
		}
		option.Compressed = forwardprotocol.CompressionFormat
	}

	// root[2]: option
	if err := encoder.Encode(option); err != nil {
		return nil, err
	}
	return enc.reusedMessageBuffer.Bytes(), nil
}

// tagOf returns the fluentd tag for a batch, with the partition key appended if any
func tagOf(baseTag string, batch base.Batch) string {
	if batch.PartitionKey == "" {
		return baseTag
	}
	return baseTag + "." + batch.PartitionKey
}
