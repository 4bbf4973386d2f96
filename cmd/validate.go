package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kilianp07/ldarsim/app"
	"github.com/kilianp07/ldarsim/app/plugins"
	"github.com/kilianp07/ldarsim/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and input tables without running",
	RunE:  validate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	in, err := app.LoadInputs(cfg)
	if err != nil {
		return fmt.Errorf("inputs: %w", err)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%d sites, %d leaks, %d programs x %d replicates\n",
		len(in.Registry.Sites()), len(in.Registry.Leaks()), len(cfg.Programs), cfg.Simulation.NSimulations)
	for section, types := range plugins.Catalog() {
		fmt.Fprintf(w, "%s: %s\n", section, strings.Join(types, ", "))
	}
	return nil
}
