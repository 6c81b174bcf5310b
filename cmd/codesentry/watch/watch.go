package watch

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codesentry/codesentry/cmd/codesentry/options"
	"github.com/codesentry/codesentry/pkg/checker"
)

var flags options.Flags

var Cmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the periodic integrity-checking loop",
	Long: `Run the enumerate, filter, hash, compare loop until interrupted.
Every detected divergence is printed to stderr; the loop itself never
stops because of a divergence. The exit status is non-zero only for a
fatal error (enumeration failure, unsupported platform).`,
	RunE: runWatch,
}

func init() {
	flags.Register(Cmd.Flags())
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := flags.Resolve(cmd.Flags())
	if err != nil {
		return err
	}

	c, err := checker.New(cfg)
	if err != nil {
		return err
	}
	defer c.Close()

	// SIGINT/SIGTERM stop the loop; Run then returns nil.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)
	go func() {
		<-sig
		c.Stop()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "codesentry: watching executable memory (period %v, algorithm %s)\n",
		cfg.CheckPeriod, cfg.Algorithm)

	divergences := 0
	err = c.Run(func(e checker.Event) {
		divergences++
		fmt.Fprintf(cmd.ErrOrStderr(), "DIVERGENCE %s\n", e)
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "codesentry: stopped (%d divergence(s) observed)\n", divergences)
	return nil
}
