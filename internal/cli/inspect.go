package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zeusync/thunder/internal/core/codec"
	"github.com/zeusync/thunder/internal/core/system"
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand(rootOpts *RootOptions) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:          "inspect <file>",
		Short:        "Print the entity tree stored in a serialized file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := pickFormat(from, args[0])
			if err != nil {
				return err
			}
			v, err := readValue(args[0], f)
			if err != nil {
				return err
			}
			records, err := system.Records(v)
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), records, rootOpts.Verbose)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "input format (json|bson)")

	return cmd
}

// printTree writes one line per record, indented by depth. Records are
// stored parent first, so a parent's depth is always known before its
// children.
func printTree(w io.Writer, records []system.Record, verbose bool) {
	depth := make(map[uint32]int, len(records))
	for i, r := range records {
		d := 0
		if i > 0 {
			d = depth[r.Parent] + 1
		}
		depth[r.UUID] = d

		fmt.Fprintf(w, "%s%s [%s] %08x", strings.Repeat("  ", d), r.Name, r.Type, r.UUID)
		if r.Links > 0 {
			fmt.Fprintf(w, " links=%d", r.Links)
		}
		fmt.Fprintln(w)

		if !verbose {
			continue
		}
		names := make([]string, 0, len(r.Properties))
		for name := range r.Properties {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			data, err := codec.MarshalJSON(r.Properties[name])
			if err != nil {
				data = []byte("<" + r.Properties[name].TypeName() + ">")
			}
			fmt.Fprintf(w, "%s  .%s = %s\n", strings.Repeat("  ", d), name, data)
		}
	}
}
