package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zeusync/thunder/internal/core/codec"
	"github.com/zeusync/thunder/internal/core/observability/log"
	"github.com/zeusync/thunder/internal/injector"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	var load string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the object runtime until interrupted",
		Long: `Start the engine described by --config and pump its systems every tick
until SIGINT or SIGTERM. With --load, the tree stored in the given file is
rebuilt in the primary system first.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, cleanup, err := injector.Initialize(rootOpts.Config)
			if err != nil {
				return err
			}
			defer cleanup()
			if rootOpts.Verbose {
				e.Log().SetLevel(log.LevelDebug)
			}

			if load != "" {
				f, err := codec.FormatOf(load)
				if err != nil {
					return err
				}
				data, err := os.ReadFile(load)
				if err != nil {
					return err
				}
				root, err := e.Load(data, f, nil, "")
				if err != nil {
					return err
				}
				e.Log().Info("tree loaded", log.String("file", load), log.UUID("root", root.UUID()))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			err = e.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			e.Log().Info("engine stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&load, "load", "", "serialized tree to load at startup")

	return cmd
}
