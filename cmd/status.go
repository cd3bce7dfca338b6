package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipeboot/pipeboot/internal/confirm"
	"github.com/pipeboot/pipeboot/internal/engine"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report which provisioning steps are already satisfied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(&confirm.Auto{})
		if err != nil {
			return err
		}
		result, err := e.Execute(engine.ModeCheck)
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(result)
		}

		pending := 0
		for _, sr := range result.Steps {
			fmt.Printf("%-16s %s\n", sr.ID, sr.Status)
			if sr.Status == engine.StatusNeedsApply {
				pending++
			}
		}
		fmt.Println()
		if pending == 0 {
			fmt.Println("Host is fully provisioned.")
		} else {
			fmt.Printf("%d step(s) need apply; run 'pipeboot up'.\n", pending)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
