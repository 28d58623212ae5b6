// Package filedump provides output to local files, one file per batch, for debugging and offline delivery
//
// Entries are written as JSON lines. The partition key of a batch is stored as extended attribute of its file.
package filedump

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/xattr"
	"github.com/relex/eventsink/base"
	"github.com/relex/eventsink/base/bconfig"
	"github.com/relex/eventsink/defs"
	"github.com/relex/eventsink/output/shared"
	"github.com/relex/eventsink/util"
	"github.com/relex/gotils/logger"
)

// PartitionKeyAttribute is the extended attribute name for partition key of batch files
const PartitionKeyAttribute = "user.eventsink.partitionKey"

const (
	fileSuffix     = ".json"
	tempFileSuffix = ".tmp"
)

// Config defines configuration for file dump output
type Config struct {
	bconfig.Header `yaml:",inline"`
	Serialization  shared.JSONSerializationConfig `yaml:"serialization"`
	Directory      string                         `yaml:"directory"`
}

// NewSerializer creates a JSON EntrySerializer
func (cfg *Config) NewSerializer(parentLogger logger.Logger) (base.EntrySerializer, error) {
	return shared.NewJSONSerializer(parentLogger, cfg.Serialization), nil
}

// NewTransport creates the file writer
func (cfg *Config) NewTransport(parentLogger logger.Logger, metricFactory *base.MetricFactory) (base.BatchTransport, error) {
	return NewWriter(parentLogger, cfg.Directory)
}

// VerifyConfig verifies the configuration
func (cfg *Config) VerifyConfig() error {
	if len(cfg.Directory) == 0 {
		return fmt.Errorf(".directory is unspecified")
	}
	return nil
}

type writer struct {
	logger       logger.Logger
	dirPath      string
	dir          *os.File
	xattrFailing bool // set after the first xattr failure to avoid flooding logs
}

// NewWriter creates a BatchTransport writing batches as files in the given directory
func NewWriter(parentLogger logger.Logger, dirPath string) (base.BatchTransport, error) {
	if err := os.MkdirAll(dirPath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	dir, err := os.Open(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open directory %s: %w", dirPath, err)
	}
	return &writer{
		logger: parentLogger.WithFields(logger.Fields{
			defs.LabelComponent: "FileDumpWriter",
			defs.LabelName:      dirPath,
		}),
		dirPath: dirPath,
		dir:     dir,
	}, nil
}

func (w *writer) SendBatch(ctx context.Context, batch base.Batch) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var content bytes.Buffer
	content.Grow(batch.NumBytes + batch.Len())
	for _, entry := range batch.Entries {
		content.Write(entry.Data)
		content.WriteByte('\n')
	}

	filename := batch.ID + fileSuffix
	tempFilename := filename + tempFileSuffix
	if err := util.WriteFileAt(w.dir, tempFilename, content.Bytes(), 0o644); err != nil {
		return base.NewTransportError("failed to write %s: %w", tempFilename, err)
	}
	if batch.PartitionKey != "" {
		w.labelFile(tempFilename, batch.PartitionKey)
	}
	if err := util.RenameFileAt(w.dir, tempFilename, filename); err != nil {
		return base.NewTransportError("failed to rename %s: %w", tempFilename, err)
	}
	w.logger.Debugf("written %s", batch.String())
	return nil
}

func (w *writer) Close() error {
	return w.dir.Close()
}

func (w *writer) labelFile(filename string, partitionKey string) {
	path := filepath.Join(w.dirPath, filename)
	if err := xattr.Set(path, PartitionKeyAttribute, []byte(partitionKey)); err != nil {
		if !w.xattrFailing {
			w.logger.Warnf("failed to set partition key as extended attribute, filesystem may not support it: %s", err.Error())
			w.xattrFailing = true
		}
	}
}
