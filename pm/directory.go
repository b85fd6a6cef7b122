package pm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrInvalidDirectory = errors.New("tilecover: invalid pmtiles directory")

// entry is a directory entry. Entries with zero RunLength point to leaf directories.
type entry struct {
	TileCode  uint64
	Offset    uint64
	Length    uint32
	RunLength uint32
}

func decodeDirectory(data []byte) ([]entry, error) {
	byteReader := bytes.NewReader(data)

	var err error
	readUvarint := func() uint64 {
		if err != nil {
			return 0
		}
		var value uint64
		value, err = binary.ReadUvarint(byteReader)
		return value
	}

	numEntries := readUvarint()
	if numEntries > uint64(len(data)) {
		return nil, fmt.Errorf("%w: directory with %d entries in %d bytes", ErrInvalidDirectory, numEntries, len(data))
	}
	entries := make([]entry, numEntries)

	lastCode := uint64(0)
	for i := range entries {
		lastCode += readUvarint()
		entries[i].TileCode = lastCode
	}
	for i := range entries {
		entries[i].RunLength = uint32(readUvarint())
	}
	for i := range entries {
		entries[i].Length = uint32(readUvarint())
	}
	for i := range entries {
		value := readUvarint()
		if value == 0 && i > 0 {
			entries[i].Offset = entries[i-1].Offset + uint64(entries[i-1].Length)
		} else {
			entries[i].Offset = value - 1
		}
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDirectory, err)
	}
	return entries, nil
}
