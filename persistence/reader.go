package persistence

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spacemeshos/bitio/bitstream"
)

// FileReader is a BitReader over a buffered file.
type FileReader struct {
	*bitstream.BitReader
	f *os.File
}

// OpenReader opens name for bit-level reading, with a read buffer of bufferSize bytes.
func OpenReader(name string, bufferSize int, opts ...bitstream.ReaderOpt) (*FileReader, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("failed to open file for bit reader: %w", err)
	}

	return &FileReader{
		BitReader: bitstream.NewReader(bufio.NewReaderSize(f, bufferSize), opts...),
		f:         f,
	}, nil
}

// Size returns the file size in bytes.
func (r *FileReader) Size() (uint64, error) {
	info, err := r.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to get stats for bit reader: %w", err)
	}
	return uint64(info.Size()), nil
}

func (r *FileReader) Close() error {
	return r.f.Close()
}
