package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/redchew/aotjs/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "aotjs",
	Short: "aotjs embeddable value/heap/GC/closure runtime toolkit",
	Long:  `aotjs hosts a JS-like Value/HeapObject/Engine runtime and demonstrates it end to end.`,
}

// main registers the CLI's version and subcommands, wires persistent
// flags, and runs the root command, exiting 1 on any command error.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(gcCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "color mode (auto|on|off); not read by any subcommand: output is colorized only when stdout is a terminal")
	rootCmd.PersistentFlags().String("ui", "auto", "use the interactive progress view (auto|on|off)")
	rootCmd.PersistentFlags().String("config", "aotjs.toml", "path to the engine config file, if present")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to an interactive terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
