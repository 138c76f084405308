package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "namespacer",
	Short:         "Namespaced-storage analyzer for upgradeable Solidity contracts",
	Long:          "namespacer detects storage layouts unsafe for upgradeable contracts and rewrites state variables into ERC-7201 namespaced storage.",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
