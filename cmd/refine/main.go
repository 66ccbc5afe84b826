package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thedevdojo/refine/config"
	"github.com/thedevdojo/refine/finder"
	"github.com/thedevdojo/refine/instrument"
)

const version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "refine",
	Short: "Template source tracing toolkit",
	Long: `Refine instruments server-side templates so a rendered element can be
traced back to the exact source line that produced it, and serves the
source API that fetches and saves template files for in-browser editing.`,
}

func main() {
	rootCmd.Version = version

	rootCmd.AddCommand(instrumentCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(usageCmd)

	rootCmd.PersistentFlags().StringP("config", "c", "refine.toml", "path to the configuration file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by the persistent --config flag.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	return config.Load(path)
}

// newFinder builds the path resolver from configured template roots,
// resolved to absolute paths so identifier derivation is stable regardless
// of the working directory.
func newFinder(cfg config.Config) *finder.Finder {
	roots := make([]string, 0, len(cfg.Templates.Roots))
	for _, r := range cfg.Templates.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			abs = r
		}
		roots = append(roots, abs)
	}
	return finder.New(roots, cfg.Templates.Extensions...)
}

// instrumentOptions converts the config surface into engine options.
func instrumentOptions(cfg config.Config) instrument.Options {
	return instrument.Options{
		Attribute:       cfg.Instrument.Attribute,
		Tags:            cfg.Instrument.Tags,
		Components:      cfg.Instrument.Components,
		ComponentsSet:   true,
		ComponentPrefix: cfg.Instrument.ComponentPrefix,
	}
}
