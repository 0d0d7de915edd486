package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"code.cloudfoundry.org/bytefmt"
	"github.com/olekukonko/tablewriter"
	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"

	"github.com/spacemeshos/bitio/bitstream"
	"github.com/spacemeshos/bitio/persistence"
)

// dumpCmd represents the dump command.
var dumpCmd = &cobra.Command{
	Use:   "dump FILE",
	Short: "Print every byte of a file with its bits in stream order",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
}

func runDump(cmd *cobra.Command, args []string) error {
	r, err := persistence.OpenReader(smutil.GetCanonicalPath(args[0]), cfg.BufferSize, bitstream.ReaderWithLogger(logger))
	if err != nil {
		return err
	}
	defer r.Close()

	size, err := r.Size()
	if err != nil {
		return err
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"offset", "hex", "bits (lsb first)"})
	table.SetBorder(true)

	for offset := 0; ; offset++ {
		b, bits, err := readDumpByte(r.BitReader)
		if errors.Is(err, bitstream.ErrEndOfStream) {
			break
		}
		if err != nil {
			return err
		}
		table.Append([]string{strconv.Itoa(offset), fmt.Sprintf("%02x", b), bits})
	}

	table.SetFooter([]string{"", "total", bytefmt.ByteSize(size)})
	table.Render()
	return nil
}

// readDumpByte reads one byte bit by bit, returning it along with its bits in stream order.
func readDumpByte(br *bitstream.BitReader) (byte, string, error) {
	var (
		b    byte
		bits strings.Builder
	)
	for i := 0; i < 8; i++ {
		bit, err := br.ReadBit()
		if err != nil {
			return 0, "", err
		}
		if bit {
			b |= 1 << i
			bits.WriteByte('1')
		} else {
			bits.WriteByte('0')
		}
	}
	return b, bits.String(), nil
}
