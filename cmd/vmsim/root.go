package main

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "vmsim",
	Short: "vmsim simulates the address-translation path of a virtual " +
		"memory subsystem.",
	Long: `vmsim simulates how an MMU maps virtual addresses to physical ` +
		`frames under a configurable page-size policy, using an LRU TLB, ` +
		`and reports cache effectiveness and internal fragmentation.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
