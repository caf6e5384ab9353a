package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/splitdepth/pkg/seqio"
)

const stdioArg = "-"

// readSequence reads the sequence from the file named by args[0], or from
// standard input when args is empty or "-". The whole input is read and
// validated before anything is solved.
func readSequence(cmd *cobra.Command, args []string, maxLen int) ([]int64, error) {
	if len(args) == 0 || args[0] == stdioArg {
		return seqio.Read(cmd.InOrStdin(), maxLen)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	return seqio.Read(f, maxLen)
}
