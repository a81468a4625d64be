package main

import (
	"github.com/spf13/cobra"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	ConfigFile string
	EnvFile    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:          "gonogo",
		Short:        "Go/no-go experiment server",
		Long:         "Serves the go/no-go experiment page, stores submitted trial data and compensates Mechanical Turk workers.",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "config file (default: ./config.yml or ./cmd/gonogo/config.yml)")
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", ".env file (default: ./.env)")

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newCompensateCommand(opts))
	cmd.AddCommand(newVersionCommand())

	return cmd
}
