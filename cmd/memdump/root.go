package main

import (
	"fmt"
	"io"
	"os"

	gojson "github.com/goccy/go-json"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/hupe1980/memdebug/report"
)

// globalFlags are shared by every command.
type globalFlags struct {
	verbose bool
	jsonOut bool
	noColor bool
}

func newRootCmd() *cobra.Command {
	var g globalFlags

	root := &cobra.Command{
		Use:   "memdump",
		Short: "Inspect and compare memdebug heap snapshots",
		Long: `memdump reads heap snapshots written by the memdebug snapshot package.
It prints heap dumps grouped by call site and compares two snapshots to
show which call sites grew.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().BoolVar(&g.jsonOut, "json", false, "Output in JSON format")
	root.PersistentFlags().BoolVar(&g.noColor, "no-color", false, "Disable colored output")

	root.AddCommand(newShowCmd(&g), newDiffCmd(&g), newDemoCmd(&g))
	return root
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// reportOptions picks colours for w unless disabled.
func (g *globalFlags) reportOptions(w io.Writer) report.Options {
	if g.noColor || g.jsonOut {
		return report.Options{}
	}
	f, ok := w.(*os.File)
	return report.Options{Color: ok && isatty.IsTerminal(f.Fd())}
}

// printVerbose prints a message to stderr if verbose mode is enabled.
func (g *globalFlags) printVerbose(cmd *cobra.Command, format string, args ...any) {
	if g.verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), format, args...)
	}
}

// printJSON outputs v as indented JSON.
func printJSON(w io.Writer, v any) error {
	b, err := gojson.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
