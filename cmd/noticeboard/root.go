package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"noticeboard/internal/config"
)

const defaultConfigPath = "./noticeboard.yaml"

// NewRootCmd creates the noticeboard command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "noticeboard",
		Short:         "Site health notices for the admin dashboard",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}
	root.PersistentFlags().StringP("config", "c", defaultConfigPath, "path to the config file (JSON or YAML)")
	root.PersistentFlags().Bool("no-color", false, "disable coloured output")

	root.AddCommand(newServeCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newConfigCmd())
	return root
}

func configPath(cmd *cobra.Command) string {
	p, _ := cmd.Flags().GetString("config")
	if p == "" {
		return defaultConfigPath
	}
	return p
}

func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	path := configPath(cmd)
	cfg, err := config.NewConfigManager(path).Parse()
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}
