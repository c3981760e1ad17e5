package cmd

import (
	"github.com/spf13/cobra"

	"napkin/pkg/repl"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive REPL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startREPL()
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func startREPL() error {
	return repl.Start(repl.Options{
		Prompt: appConfig.REPL.Prompt,
		Color:  appConfig.REPL.Color,
		Logger: logger,
	})
}
