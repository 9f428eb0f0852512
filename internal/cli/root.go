package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config  string
	Verbose bool
}

// NewRootCommand creates the root command for the thor CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "thor",
		Short: "Thunder object runtime tools",
		Long:  "Inspect and convert serialized entity trees and run the object runtime.",

		SilenceErrors: true, // main prints the error
	}

	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "config file (.toml, .yaml)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))

	return cmd
}
