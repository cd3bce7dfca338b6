package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipeboot/pipeboot/internal/confirm"
	"github.com/pipeboot/pipeboot/internal/engine"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Show what the bootstrap would do without executing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(&confirm.Auto{})
		if err != nil {
			return err
		}
		result, err := e.Execute(engine.ModeDryRun)
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(result)
		}

		fmt.Println("Dry-run: bootstrap")
		fmt.Println()
		for _, sr := range result.Steps {
			fmt.Printf("Step: %s [%s]\n", sr.ID, sr.Status)
			if sr.Detail != "" {
				fmt.Printf("  %s\n", sr.Detail)
			} else if sr.Command != "" {
				fmt.Printf("  %s\n", sr.Command)
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(planCmd)
}
