// cmd/nutritrack/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nutritrack",
		Short: "Nutrition tracking API",
		Long: `nutritrack serves the REST API for meal logging, daily nutrition
summaries, AI plans and reminders.`,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newGoalsCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
