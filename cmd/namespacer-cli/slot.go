package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"namespacer/internal/slot"
	"namespacer/repl"
)

var slotCmd = &cobra.Command{
	Use:   "slot [namespace id...]",
	Short: "Compute the ERC-7201 storage slot for namespace ids",
	Long:  "Prints the namespaced storage slot for each id. With no arguments an interactive calculator starts.",
	RunE:  runSlot,
}

func init() {
	rootCmd.AddCommand(slotCmd)
}

func runSlot(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return repl.Start()
	}
	for _, id := range args {
		fmt.Printf("%s  %s\n", slot.Hash(id), id)
	}
	return nil
}
