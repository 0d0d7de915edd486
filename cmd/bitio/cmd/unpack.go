package cmd

import (
	"bufio"
	"errors"
	"fmt"

	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spacemeshos/bitio/bitstream"
	"github.com/spacemeshos/bitio/persistence"
)

// unpackCmd represents the unpack command.
var unpackCmd = &cobra.Command{
	Use:   "unpack FILE...",
	Short: "Print the width-bit fields of packed files",
	Long: `Unpack decodes fields of --width bits and prints them one per line.
Files are decoded concurrently and printed in the given order.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runUnpack,
}

func init() {
	rootCmd.AddCommand(unpackCmd)

	unpackCmd.Flags().Uint64("count", 0, "number of fields to decode per file; 0 decodes until the end of the stream, "+
		"which may yield trailing zero fields from padding when --width is below 8")
}

func runUnpack(cmd *cobra.Command, args []string) error {
	results := make([][]uint64, len(args))

	var eg errgroup.Group
	for i, name := range args {
		i, name := i, name
		eg.Go(func() error {
			fields, err := unpackFile(smutil.GetCanonicalPath(name), cfg.FieldWidth, cfg.Count, cfg.BufferSize)
			if err != nil {
				return fmt.Errorf("%v: %w", name, err)
			}
			results[i] = fields
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	for i, fields := range results {
		if len(args) > 1 {
			fmt.Fprintf(out, "# %s\n", args[i])
		}
		for _, v := range fields {
			fmt.Fprintln(out, v)
		}
	}
	return out.Flush()
}

func unpackFile(name string, width uint, count uint64, bufferSize int) ([]uint64, error) {
	r, err := persistence.OpenReader(name, bufferSize, bitstream.ReaderWithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var fields []uint64
	for count == 0 || uint64(len(fields)) < count {
		v, err := r.ReadBits(width)
		if errors.Is(err, bitstream.ErrEndOfStream) {
			if count != 0 {
				return nil, fmt.Errorf("stream ended after %d of %d fields: %w", len(fields), count, err)
			}
			break
		}
		if err != nil {
			return nil, err
		}
		fields = append(fields, v)
	}

	logger.Debug("unpacked file",
		zap.String("file", name),
		zap.Int("fields", len(fields)),
		zap.Uint("leftover_bits", r.Buffered()),
	)
	return fields, nil
}
