package main

import (
	"github.com/spf13/cobra"

	"github.com/m3rciful/themebot/bot/app"
	"github.com/m3rciful/themebot/bot/config"
	corecmd "github.com/m3rciful/themebot/core/cmd"
)

const defaultConfigPath = "config.yaml"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "themebot",
		Short:         "Telegram bot selling website templates, blocks and styles",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "config file (default $CONFIG_PATH or "+defaultConfigPath+")")
	root.AddCommand(newRunCmd(), newCatalogCmd(), newVersionCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the bot",
		Long:  `Loads the configuration, connects optional storage and runs the bot until SIGINT or SIGTERM. SIGHUP reloads the catalog.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			return corecmd.Run(corecmd.Options{
				ConfigPath:        path,
				DefaultConfigPath: defaultConfigPath,
				LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
					return config.Load(path)
				},
				Bootstrap: app.Bootstrap,
			})
		},
	}
}
