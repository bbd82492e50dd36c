// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"seekone/internal/appcore"
	"seekone/internal/chemistry"
	"seekone/internal/cli"
	"seekone/internal/cmdutil"
	"seekone/internal/version"
)

// RunContext executes one seekone command line and returns the exit code.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	code := 0
	root := newRoot(stdout, stderr, &code)
	root.SetArgs(argv)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.ExecuteContext(parent); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	return code
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

func newRoot(stdout, stderr io.Writer, code *int) *cobra.Command {
	root := &cobra.Command{
		Use:   "seekone",
		Short: "single-cell read-1 barcode extraction and correction",
		Long: `seekone: single-cell barcode step

Reads paired FASTQ, corrects cell barcodes and linkers in read 1 against
whitelists, writes renamed read-2 records and a JSON summary.

Version: ` + version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(barcodeCommand(stdout, stderr, code))
	root.AddCommand(chemistryCommand(stdout))
	root.AddCommand(versionCommand(stdout))
	return root
}

func barcodeCommand(stdout, stderr io.Writer, code *int) *cobra.Command {
	var o cli.Options
	cmd := &cobra.Command{
		Use:   "barcode",
		Short: "extract and correct barcodes, write renamed read 2",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fs := cmd.Flags()
			if o.Quiet && o.Verbose {
				cmdutil.Warnf(stderr, false, "--quiet and --verbose both set; using --verbose")
			}
			if o.Chemistry != "" {
				for _, name := range []string{"structure", "barcode", "linker", "misB", "misL", "shift", "pattern"} {
					if fs.Changed(name) {
						cmdutil.Warnf(stderr, o.Quiet, "--%s ignored: set by --chemistry %s", name, o.Chemistry)
					}
				}
			}
			if err := cli.Validate(&o); err != nil {
				return err
			}
			*code = appcore.Run(cmd.Context(), stdout, stderr, o)
			return nil
		},
	}
	cli.Register(cmd.Flags(), &o)
	cmd.Flags().SortFlags = false
	return cmd
}

func chemistryCommand(stdout io.Writer) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "chemistry",
		Short: "list built-in chemistry presets",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			for _, name := range chemistry.Names() {
				p, err := chemistry.Lookup(name, dir)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(stdout, "%s\tstructure=%s\tshift=%t\tmisB=%s\tmisL=%s\tbarcode=%s\tlinker=%s\n",
					p.Name, p.Structure, p.Shift, p.B, p.L,
					strings.Join(p.Barcodes, ","), strings.Join(p.Linkers, ","))
				if err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "whitelist-dir", ".", "directory preset whitelist names resolve against")
	return cmd
}

func versionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := fmt.Fprintf(stdout, "seekone version %s\n", version.Version)
			return err
		},
	}
}
