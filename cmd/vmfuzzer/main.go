package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgPath string
	verbose bool
	version = "dev" // Will be set by build flags
)

var rootCmd = &cobra.Command{
	Use:   "vmfuzzer",
	Short: "Coverage-guided fuzzer for smart contracts on an embedded bytecode VM",
	Long: `vmfuzzer is a coverage-guided, multi-worker fuzzer for smart contracts
executed on an embedded bytecode VM. It supports a stateless mode (one target
function driven in isolation) and a stateful mode (randomized sequences of
calls over a shared, periodically-reset world).`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config-path", "", "path to the YAML config file (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug-level) logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(listFunctionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
