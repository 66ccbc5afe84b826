package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thedevdojo/refine/marker"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <token-or-template-id>",
	Short: "Decode a marker token or resolve a template identifier",
	Long: `Resolve inspects a marker token extracted from rendered HTML, or a bare
template identifier, and prints the file it points at. Useful for checking
what a data-source attribute refers to.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	f := newFinder(cfg)
	out := cmd.OutOrStdout()

	templateID := args[0]
	if ref, ok := marker.Decode(args[0]); ok {
		fmt.Fprintf(out, "template: %s\n", color.CyanString(ref.TemplateID))
		fmt.Fprintf(out, "line:     %d\n", ref.Line)
		templateID = ref.TemplateID
	}

	path, ok := f.Abs(templateID)
	if !ok {
		return fmt.Errorf("no template file found for %q under the configured roots", templateID)
	}
	fmt.Fprintf(out, "path:     %s\n", path)
	return nil
}
