package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ldarsim/app"
	"github.com/kilianp07/ldarsim/config"
	"github.com/kilianp07/ldarsim/infra/logger"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every program of the configuration",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	out, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d replicates, %d failed, report in %s\n",
		out.RunID, len(out.Outcomes), out.Failed, cfg.Simulation.OutputDir)
	if out.Failed > 0 {
		return fmt.Errorf("%d of %d replicates failed", out.Failed, len(out.Outcomes))
	}
	return nil
}
