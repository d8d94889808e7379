// Package cmd provides the command-line interface of conveyorsim.
package cmd

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "conveyorsim",
	Short: "Discrete-event simulator of conveyor lines feeding one sink.",
	Long: `conveyorsim simulates parallel conveyor lines that deliver totes ` +
		`to a sink, which releases one batch whenever every line has ` +
		`delivered a tote. Each line runs on its own simulator, and the ` +
		`simulators are kept causally consistent in lookahead windows.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		logrus.Error(err)
		atexit.Exit(1)
	}
}
