package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/meshprobe/probe"
)

var validateFlags struct {
	configPath string
	ranks      int
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a probe configuration without touching any mesh",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.SilenceUsage = true

		document, err := os.ReadFile(validateFlags.configPath)
		if err != nil {
			log.Fatalf("Error reading config: %v", err)
		}

		cfg, err := probe.Load(document, validateFlags.ranks)
		if err != nil {
			log.Fatalf("Invalid probe configuration: %v", err)
		}

		fmt.Printf("Configuration is valid.\n")
		fmt.Printf("Output frequency: every %d steps\n", cfg.OutputFrequency)

		for _, group := range cfg.Groups {
			numProbes := 0
			numPoints := 0
			for _, set := range group.Sets {
				numProbes += set.NumProbes()
				for _, n := range set.NumPoints {
					numPoints += n
				}
			}

			fmt.Printf("Group %s: %d probes, %d sample points, %d fields\n",
				group.Name, numProbes, numPoints, len(group.Fields))

			for _, set := range group.Sets {
				for i, name := range set.PartNames {
					fmt.Printf("  probe %s: %d points on rank %d\n",
						name, set.NumPoints[i], set.OwningRanks[i])
				}
			}
		}
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateFlags.configPath,
		"config", "c", "", "path to the probe configuration file")
	validateCmd.Flags().IntVarP(&validateFlags.ranks,
		"ranks", "r", 1, "number of ranks to partition for")

	must(validateCmd.MarkFlagRequired("config"))

	rootCmd.AddCommand(validateCmd)
}
