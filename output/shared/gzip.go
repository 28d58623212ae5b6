package shared

import (
	"bytes"

	"github.com/klauspost/compress/gzip"
)

// GzipCompressionLevel is used for all compressed outputs
//
// BestSpeed uses 30% more space and roughly same percentage in time saving
const GzipCompressionLevel = gzip.BestSpeed

// GzipCompress compresses the given data into a new slice
func GzipCompress(data []byte) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Grow(len(data)/4 + 64)
	if err := GzipCompressTo(&buffer, data); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// GzipCompressTo compresses the given data and appends the result to buffer
func GzipCompressTo(buffer *bytes.Buffer, data []byte) error {
	writer, err := gzip.NewWriterLevel(buffer, GzipCompressionLevel)
	if err != nil {
		return err
	}
	if _, err := writer.Write(data); err != nil {
		return err
	}
	return writer.Close()
}
