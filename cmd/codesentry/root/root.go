package root

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codesentry/codesentry/cmd/codesentry/bench"
	"github.com/codesentry/codesentry/cmd/codesentry/watch"
	"github.com/codesentry/codesentry/pkg/version"
)

var rootCmd = &cobra.Command{
	Use:   "codesentry",
	Short: "Detect in-memory corruption of a process's executable code",
	Long: `codesentry periodically hashes the executable memory pages of its
own process and compares them against the digests of the previous
cycle. A divergence means the code bytes changed in place: a bit flip
from a memory fault, rowhammer-class tampering, or a hardware error.

The watch command runs the checking loop; bench measures the cost of
one pass under every option combination so the check period can be
tuned for a workload.`,
	Version: version.Version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(watch.Cmd)
	rootCmd.AddCommand(bench.Cmd)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetVersionTemplate(fmt.Sprintf("codesentry %s\n", version.String()))
}
