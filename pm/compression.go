package pm

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

var ErrUnsupportedCompression = errors.New("tilecover: unsupported compression")

func decompress(data []byte, compression Compression) ([]byte, error) {
	var reader io.Reader
	switch compression {
	case CompressionNone:
		return data, nil
	case CompressionGzip:
		gzReader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decompress: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader
	case CompressionBrotli:
		reader = brotli.NewReader(bytes.NewReader(data))
	case CompressionZstd:
		decoder, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("failed to decompress: %w", err)
		}
		defer decoder.Close()
		result, err := decoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress: %w", err)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("%w (%v)", ErrUnsupportedCompression, compression)
	}

	result, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return result, nil
}
