package cmd

import (
	"io"
	"os"

	"github.com/spacemeshos/smutil"
	"github.com/spf13/cobra"
)

// openInput opens name, or returns the command's input when name is empty or "-".
func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(smutil.GetCanonicalPath(name))
}
