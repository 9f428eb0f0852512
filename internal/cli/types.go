package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/zeusync/thunder/internal/core/metatype"
	"github.com/zeusync/thunder/internal/core/system"
)

// NewTypesCommand creates the types command.
func NewTypesCommand(_ *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List registered value types and entity classes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tSIZE")
			for _, d := range metatype.Types() {
				fmt.Fprintf(w, "%d\t%s\t%d\n", d.ID, d.Name, d.Size)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			classes := system.Classes()
			if len(classes) > 0 {
				fmt.Fprintln(cmd.OutOrStdout())
				for _, url := range classes {
					fmt.Fprintln(cmd.OutOrStdout(), url)
				}
			}
			return nil
		},
	}

	return cmd
}
