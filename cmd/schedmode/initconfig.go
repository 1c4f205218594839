package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultConfigFile = "schedmode.yaml"

func (a *app) newInitConfigCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a config file with the current settings",
		Long: `Writes the effective configuration (built-in defaults merged with
--config, if given) as YAML, ready to be edited and passed back with --config.
The default destination is ` + defaultConfigFile + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			return a.initConfig(cmd, path, force)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func (a *app) initConfig(cmd *cobra.Command, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	if err := a.cfg.Save(path); err != nil {
		return err
	}
	a.logger.Debug("wrote config", zap.String("path", path))
	fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote config to %s\n", path)
	return nil
}
