// Command epspkit analyzes stimulus-evoked field potential recordings:
// it loads per-sweep CSV exports, runs the configured transform and
// feature pipeline, and writes one JSON result document per recording.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "epspkit",
		Short:         "Evoked field potential analysis",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(analyzeCommand())

	return root
}
