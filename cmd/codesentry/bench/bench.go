package bench

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/codesentry/codesentry/cmd/codesentry/options"
	"github.com/codesentry/codesentry/internal/shared"
	"github.com/codesentry/codesentry/pkg/checker"
)

var flags options.Flags

var Cmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure the cost of one checking pass per option variant",
	Long: `Run the enumerate, filter, hash pipeline once for every combination
of skip-libs and include-writable-code, and print per-phase timings
with region and byte counts. Use the numbers to pick a check period
the workload can afford.`,
	RunE: runBench,
}

func init() {
	flags.Register(Cmd.Flags())
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := flags.Resolve(cmd.Flags())
	if err != nil {
		return err
	}

	c, err := checker.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	result, err := c.Benchmark()
	if err != nil {
		return fmt.Errorf("bench: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "algorithm: %s\n\n", result.Algorithm)

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "skip_libs\twritable_code\tregions\tbytes\tenumerate\tfilter\thash")
	for _, v := range result.Variants {
		fmt.Fprintf(w, "%v\t%v\t%d\t%s\t%v\t%v\t%v\n",
			v.SkipLibs, v.IncludeWritableCode,
			v.Regions, shared.FormatBytes(v.Bytes),
			v.EnumerateTime, v.FilterTime, v.HashTime)
	}
	return w.Flush()
}
