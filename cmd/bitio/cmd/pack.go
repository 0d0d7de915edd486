package cmd

import (
	"bufio"
	"fmt"
	"strconv"

	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spacemeshos/bitio/bitstream"
	"github.com/spacemeshos/bitio/persistence"
)

var (
	packIn  string
	packOut string
)

// packCmd represents the pack command.
var packCmd = &cobra.Command{
	Use:   "pack",
	Short: "Pack integers into width-bit fields",
	Long: `Pack reads whitespace separated unsigned integers (decimal, or 0x-prefixed hex)
and writes each one as a field of --width bits. The last byte is padded with zeros.`,
	Args: cobra.NoArgs,
	RunE: runPack,
}

func init() {
	rootCmd.AddCommand(packCmd)

	packCmd.Flags().StringVar(&packIn, "in", "", "input file (default stdin)")
	packCmd.Flags().StringVar(&packOut, "out", "", "output file, replaced atomically (default stdout)")
}

func runPack(cmd *cobra.Command, _ []string) error {
	in, err := openInput(cmd, packIn)
	if err != nil {
		return err
	}
	defer in.Close()

	var count int
	pack := func(bw *bitstream.BitWriter) error {
		scanner := bufio.NewScanner(in)
		scanner.Split(bufio.ScanWords)
		for scanner.Scan() {
			v, err := strconv.ParseUint(scanner.Text(), 0, 64)
			if err != nil {
				return fmt.Errorf("value #%d: %w", count, err)
			}
			if err := bw.WriteBits(v, cfg.FieldWidth); err != nil {
				return fmt.Errorf("value #%d: %w", count, err)
			}
			count++
		}
		return scanner.Err()
	}

	if packOut == "" || packOut == "-" {
		out := bufio.NewWriterSize(cmd.OutOrStdout(), cfg.BufferSize)
		if err := bitstream.WithWriter(out, pack, bitstream.WriterWithLogger(logger)); err != nil {
			return err
		}
		return out.Flush()
	}

	minFree, _ := cfg.MinFreeSpaceBytes()
	if err := persistence.WriteFile(smutil.GetCanonicalPath(packOut), minFree, logger, pack); err != nil {
		return err
	}
	logger.Debug("packed values", zap.Int("count", count), zap.Uint("width", cfg.FieldWidth))
	return nil
}
