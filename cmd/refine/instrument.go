package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thedevdojo/refine/instrument"
)

var instrumentCmd = &cobra.Command{
	Use:   "instrument <template-file>",
	Short: "Annotate a template with source markers",
	Long: `Instrument rewrites a template so eligible opening tags carry a marker
attribute encoding the template identifier and line number. By default the
annotated source is printed to stdout; --check reports what would happen to
each candidate tag instead of printing the source.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstrument,
}

func init() {
	instrumentCmd.Flags().BoolP("write", "w", false, "rewrite the file in place instead of printing")
	instrumentCmd.Flags().Bool("check", false, "report per-tag annotation decisions without rewriting")
	instrumentCmd.MarkFlagsMutuallyExclusive("write", "check")
}

func runInstrument(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}

	f := newFinder(cfg)
	templateID := f.TemplateID(path)
	opts := instrumentOptions(cfg)

	if check, _ := cmd.Flags().GetBool("check"); check {
		reports := instrument.Inspect(string(src), templateID, string(src), opts)
		printCheck(cmd.OutOrStdout(), templateID, reports)
		return nil
	}

	out := instrument.InstrumentWithOptions(string(src), templateID, string(src), opts)

	if write, _ := cmd.Flags().GetBool("write"); write {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		return os.WriteFile(path, []byte(out), info.Mode().Perm())
	}

	_, err = cmd.OutOrStdout().Write([]byte(out))
	return err
}

// printCheck lists every candidate tag with its line and outcome, then an
// annotated/skipped total.
func printCheck(w io.Writer, templateID string, reports []instrument.TagReport) {
	annotated, skipped := 0, 0
	for _, r := range reports {
		if r.Annotated {
			annotated++
			fmt.Fprintf(w, "%s  line %-4d <%s>\n", color.GreenString("ok"), r.Line, r.TagName)
			continue
		}
		skipped++
		fmt.Fprintf(w, "%s line %-4d <%s>  %s\n", color.YellowString("--"), r.Line, r.TagName, r.Reason)
	}
	fmt.Fprintf(w, "%s: %d annotated, %d skipped\n", templateID, annotated, skipped)
}
