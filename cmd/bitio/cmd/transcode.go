package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/icza/bitio"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitio/bitstream"
	"github.com/spacemeshos/bitio/config"
)

var transcodeIn string

// transcodeCmd represents the transcode command.
var transcodeCmd = &cobra.Command{
	Use:   "transcode",
	Short: "Re-encode width-bit fields between LSB-first and MSB-first bit order",
	Long: `Transcode reads fields of --width bits laid out in --from bit order and writes
them in --to bit order to stdout. MSB-first streams are the convention of formats
such as FLAC; the last byte is zero padded in either order.`,
	Args: cobra.NoArgs,
	RunE: runTranscode,
}

func init() {
	rootCmd.AddCommand(transcodeCmd)

	transcodeCmd.Flags().StringVar(&transcodeIn, "in", "", "input file (default stdin)")
	transcodeCmd.Flags().String("from", string(config.LSB), "bit order of the input (lsb, msb)")
	transcodeCmd.Flags().String("to", string(config.MSB), "bit order of the output (lsb, msb)")
	transcodeCmd.Flags().Uint64("count", 0, "number of fields to transcode; 0 transcodes until the end of the stream")
}

type fieldReader func(width uint) (uint64, error)

type fieldWriter interface {
	writeField(v uint64, width uint) error
	io.Closer
}

func runTranscode(cmd *cobra.Command, _ []string) error {
	in, err := openInput(cmd, transcodeIn)
	if err != nil {
		return err
	}
	defer in.Close()

	out := bufio.NewWriterSize(cmd.OutOrStdout(), cfg.BufferSize)
	read := newFieldReader(cfg.From, bufio.NewReaderSize(in, cfg.BufferSize))
	w := newFieldWriter(cfg.To, out)

	var count uint64
	for cfg.Count == 0 || count < cfg.Count {
		v, err := read(cfg.FieldWidth)
		if cfg.Count == 0 && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
			break
		}
		if err != nil {
			w.Close()
			return fmt.Errorf("field #%d: %w", count, err)
		}
		if err := w.writeField(v, cfg.FieldWidth); err != nil {
			w.Close()
			return fmt.Errorf("field #%d: %w", count, err)
		}
		count++
	}

	if err := w.Close(); err != nil {
		return err
	}
	logger.Debug("transcoded fields",
		zap.Uint64("count", count),
		zap.String("from", string(cfg.From)),
		zap.String("to", string(cfg.To)),
	)
	return out.Flush()
}

func newFieldReader(order config.BitOrder, r io.Reader) fieldReader {
	if order == config.MSB {
		br := bitio.NewReader(r)
		return func(width uint) (uint64, error) {
			return br.ReadBits(uint8(width))
		}
	}
	br := bitstream.NewReader(r, bitstream.ReaderWithLogger(logger))
	return br.ReadBits
}

func newFieldWriter(order config.BitOrder, w io.Writer) fieldWriter {
	if order == config.MSB {
		return msbWriter{bitio.NewWriter(w)}
	}
	return lsbWriter{bitstream.NewWriter(w, bitstream.WriterWithLogger(logger))}
}

type msbWriter struct {
	*bitio.Writer
}

func (w msbWriter) writeField(v uint64, width uint) error {
	return w.WriteBits(v, uint8(width))
}

type lsbWriter struct {
	*bitstream.BitWriter
}

func (w lsbWriter) writeField(v uint64, width uint) error {
	return w.WriteBits(v, width)
}
