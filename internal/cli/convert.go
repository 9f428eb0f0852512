package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zeusync/thunder/internal/core/codec"
	"github.com/zeusync/thunder/internal/core/variant"
)

type convertOptions struct {
	from   string
	to     string
	indent string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &convertOptions{}

	cmd := &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a value file between JSON and BSON",
		Long: `Convert a serialized value between the JSON and BSON encodings.

Formats are taken from the file extensions unless --from or --to is set.
Use "-" as <out> to write to stdout.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(rootOpts, opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "input format (json|bson)")
	cmd.Flags().StringVar(&opts.to, "to", "", "output format (json|bson)")
	cmd.Flags().StringVar(&opts.indent, "indent", "", "indent string for JSON output")

	return cmd
}

func runConvert(rootOpts *RootOptions, opts *convertOptions, in, out string, cmd *cobra.Command) error {
	from, err := pickFormat(opts.from, in)
	if err != nil {
		return err
	}
	to, err := pickFormat(opts.to, out)
	if err != nil {
		return err
	}

	v, err := readValue(in, from)
	if err != nil {
		return err
	}

	var data []byte
	if to == codec.JSON && opts.indent != "" {
		data, err = codec.MarshalJSONIndent(v, opts.indent)
	} else {
		data, err = codec.Encode(to, v)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", to, err)
	}

	if out == "-" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	if rootOpts.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s (%s) -> %s (%s), %d bytes\n", in, from, out, to, len(data))
	}
	return nil
}

func pickFormat(flag, path string) (codec.Format, error) {
	if flag != "" {
		switch f := codec.Format(flag); f {
		case codec.JSON, codec.BSON:
			return f, nil
		}
		return "", fmt.Errorf("%w: %q", codec.ErrUnknown, flag)
	}
	return codec.FormatOf(path)
}

func readValue(path string, f codec.Format) (variant.Value, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return variant.Value{}, fmt.Errorf("read %s: %w", path, err)
	}
	v, err := codec.Decode(f, data)
	if err != nil {
		return variant.Value{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return v, nil
}
