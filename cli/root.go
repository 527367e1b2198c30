// Package cli provides the command-line interface for meshprobe.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "meshprobe",
	Short: "Meshprobe samples solution fields along virtual probe lines.",
	Long: `Meshprobe injects line-of-site data probes into a distributed ` +
		`mesh and periodically reports per-field averages along them. ` +
		`The run command drives a full multi-rank demo run in-process; ` +
		`validate checks a probe configuration without touching any mesh.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
