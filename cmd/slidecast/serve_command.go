package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"slidecast/internal/daemon"
	"slidecast/internal/jobstore"
	"slidecast/internal/logging"
)

// newServeCommand runs the daemon in the foreground, equivalent to the
// slidecastd binary.
func newServeCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the processing daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return fmt.Errorf("prepare directories: %w", err)
			}

			logger, closeLogs, err := logging.New(logging.Options{
				Format: cfg.Logging.Format,
				Level:  cfg.Logging.Level,
				LogDir: cfg.Paths.LogDir,
			})
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			defer closeLogs()

			store, err := jobstore.Open(cfg.DatabasePath())
			if err != nil {
				return fmt.Errorf("open job store: %w", err)
			}

			d, err := daemon.FromConfig(cfg, store, logger)
			if err != nil {
				return fmt.Errorf("create daemon: %w", err)
			}
			defer d.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			if err := d.Start(ctx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "slidecast daemon listening on %s\n", d.APIAddr())

			<-ctx.Done()
			d.Stop()
			return nil
		},
	}
}
