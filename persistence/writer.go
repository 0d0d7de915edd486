package persistence

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitio/bitstream"
	"github.com/spacemeshos/bitio/shared"
)

// WriteFile packs the bits written by fn into filename, replacing it atomically.
// The writer is flushed before the file is written. If fn fails, or the target
// directory has less than the packed size plus minFree bytes available, the
// existing file is left untouched. A nil logger disables logging.
func WriteFile(filename string, minFree uint64, logger *zap.Logger, fn func(bw *bitstream.BitWriter) error) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, OwnerReadWriteExec); err != nil {
		return fmt.Errorf("failed to create directory %v: %w", dir, err)
	}

	var buf bytes.Buffer
	if err := bitstream.WithWriter(&buf, fn, bitstream.WriterWithLogger(logger)); err != nil {
		return fmt.Errorf("failed to pack %v: %w", filename, err)
	}

	size := uint64(buf.Len())
	if err := shared.EnsureSpace(dir, size+minFree); err != nil {
		return err
	}

	if err := atomic.WriteFile(filename, &buf); err != nil {
		return fmt.Errorf("failed to write %v: %w", filename, err)
	}

	logger.Info("packed file written", zap.String("file", filename), zap.Uint64("bytes", size))
	return nil
}
