package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thedevdojo/refine/usage"
)

var usageCmd = &cobra.Command{
	Use:   "usage [dir]",
	Short: "List template render call sites in a Go source tree",
	Long: `Usage scans Go source for render invocations (Render, ExecuteTemplate)
and prints each template name with the file and line it is rendered from.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().StringSlice("methods", nil, "render method names to look for (default Render,ExecuteTemplate)")
}

func runUsage(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}

	methods, _ := cmd.Flags().GetStringSlice("methods")
	calls, err := usage.Scan(dir, methods...)
	if err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}

	out := cmd.OutOrStdout()
	for _, call := range calls {
		fmt.Fprintf(out, "%s  %s:%d\n", color.CyanString("%-40s", call.Template), call.File, call.Line)
	}
	if len(calls) == 0 {
		fmt.Fprintln(out, "no render calls found")
	}
	return nil
}
