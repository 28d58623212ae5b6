// Package batch packs drained entries into batches for transports
package batch

import (
	"errors"
	"fmt"

	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/defs"
	"github.com/relex/gotils/logger"
)

// OversizePolicy decides what to do with entries beyond the size budget of automatic sizing mode
type OversizePolicy string

// List of oversize policies
const (
	// OversizeDrop excludes all entries from the first one exceeding the budget, until the next flush cycle
	OversizeDrop OversizePolicy = "drop"
	// OversizeSplit packs remaining entries into more batches within the same cycle
	OversizeSplit OversizePolicy = "split"
)

// Config defines how batches are assembled
type Config struct {
	Context        base.EntryContext
	PartitionKey   string         // optional, empty for endpoint-assigned distribution
	Automatic      bool           // automatic sizing mode, by byte budget instead of count
	MaxBatchBytes  int            // byte budget of one batch in automatic sizing mode
	OversizePolicy OversizePolicy // only for automatic sizing mode
	IDSuffix       string         // suffix of batch IDs, e.g. file extension
}

// Result is the outcome of one assembly
type Result struct {
	Batches     []base.Batch
	NumIncluded int // numbers of entries in all batches
	NumExcluded int // numbers of entries dropped by the size budget
}

// Assembler enriches, serializes and packs entries into batches
//
// An Assembler is used by one publisher loop and not thread-safe
type Assembler struct {
	logger     logger.Logger
	serializer base.EntrySerializer
	config     Config
	idGen      *batchIDGenerator
}

// NewAssembler creates an Assembler
func NewAssembler(parentLogger logger.Logger, serializer base.EntrySerializer, config Config) *Assembler {
	if config.Automatic && config.MaxBatchBytes <= 0 {
		config.MaxBatchBytes = defs.DefaultMaxMessageBytes
	}
	if config.OversizePolicy == "" {
		config.OversizePolicy = OversizeDrop
	}
	return &Assembler{
		logger:     parentLogger.WithField(defs.LabelComponent, "BatchAssembler"),
		serializer: serializer,
		config:     config,
		idGen:      newBatchIDGenerator(config.IDSuffix),
	}
}

// Assemble packs the given entries in order
//
// A serialization failure of any entry aborts the whole assembly
func (asm *Assembler) Assemble(entries []base.LogEntry) (Result, error) {
	if len(entries) == 0 {
		return Result{}, nil
	}
	if !asm.config.Automatic {
		return asm.assembleAll(entries)
	}
	if asm.config.OversizePolicy == OversizeSplit {
		return asm.assembleSplit(entries)
	}
	return asm.assemblePrefix(entries)
}

// assembleAll puts all entries into one batch regardless of size
func (asm *Assembler) assembleAll(entries []base.LogEntry) (Result, error) {
	batch := asm.newBatch(len(entries))
	for i, entry := range entries {
		serialized, err := asm.serialize(i, entry)
		if err != nil {
			return Result{}, err
		}
		batch.Append(serialized)
	}
	return Result{
		Batches:     []base.Batch{batch},
		NumIncluded: len(entries),
		NumExcluded: 0,
	}, nil
}

// assemblePrefix puts the longest prefix of entries fitting into the budget into one batch, and excludes the rest
func (asm *Assembler) assemblePrefix(entries []base.LogEntry) (Result, error) {
	batch := asm.newBatch(len(entries))
	for i, entry := range entries {
		serialized, err := asm.serialize(i, entry)
		if err != nil {
			return Result{}, err
		}
		if batch.NumBytes+len(serialized.Data) > asm.config.MaxBatchBytes {
			numExcluded := len(entries) - i
			asm.logger.Debugf("batch budget %d reached at entry %d (len=%d), excluded %d entries",
				asm.config.MaxBatchBytes, i, len(serialized.Data), numExcluded)
			return asm.result([]base.Batch{batch}, i, numExcluded), nil
		}
		batch.Append(serialized)
	}
	return asm.result([]base.Batch{batch}, len(entries), 0), nil
}

// assembleSplit puts entries into as many batches as needed, and excludes single entries larger than the budget
func (asm *Assembler) assembleSplit(entries []base.LogEntry) (Result, error) {
	batches := make([]base.Batch, 0, 1)
	current := asm.newBatch(len(entries))
	numExcluded := 0
	for i, entry := range entries {
		serialized, err := asm.serialize(i, entry)
		if err != nil {
			return Result{}, err
		}
		if len(serialized.Data) > asm.config.MaxBatchBytes {
			asm.logger.Debugf("entry %d exceeds batch budget %d alone (len=%d), excluded", i, asm.config.MaxBatchBytes, len(serialized.Data))
			numExcluded++
			continue
		}
		if current.NumBytes+len(serialized.Data) > asm.config.MaxBatchBytes {
			batches = append(batches, current)
			current = asm.newBatch(len(entries) - i)
		}
		current.Append(serialized)
	}
	batches = append(batches, current)
	return asm.result(batches, len(entries)-numExcluded, numExcluded), nil
}

func (asm *Assembler) serialize(index int, entry base.LogEntry) (base.SerializedEntry, error) {
	data, err := asm.serializer.SerializeEntry(base.Enrich(entry, asm.config.Context))
	if err != nil {
		var serr *base.SinkError
		if errors.As(err, &serr) {
			return base.SerializedEntry{}, fmt.Errorf("entry %d: %w", index, err)
		}
		return base.SerializedEntry{}, base.NewSerializationError("entry %d: %w", index, err)
	}
	return base.SerializedEntry{
		Data:         data,
		PartitionKey: asm.config.PartitionKey,
	}, nil
}

func (asm *Assembler) newBatch(capacity int) base.Batch {
	return base.Batch{
		ID:           asm.idGen.Generate(),
		Entries:      make([]base.SerializedEntry, 0, capacity),
		PartitionKey: asm.config.PartitionKey,
		NumBytes:     0,
	}
}

func (asm *Assembler) result(batches []base.Batch, numIncluded int, numExcluded int) Result {
	nonEmpty := batches[:0]
	for _, b := range batches {
		if b.Len() > 0 {
			nonEmpty = append(nonEmpty, b)
		}
	}
	return Result{
		Batches:     nonEmpty,
		NumIncluded: numIncluded,
		NumExcluded: numExcluded,
	}
}
