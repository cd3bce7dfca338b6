package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipeboot/pipeboot/internal/confirm"
	"github.com/pipeboot/pipeboot/internal/engine"
)

var (
	upYes    bool
	upDeploy bool
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Run the full bootstrap sequence",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var conf confirm.Confirmer
		if upYes {
			conf = &confirm.Auto{Answer: upDeploy}
		} else {
			conf = &confirm.Interactive{In: os.Stdin, Out: os.Stdout}
		}

		e, err := newEngine(conf)
		if err != nil {
			return err
		}
		e.ForceDeploy = upDeploy

		result, err := e.Execute(engine.ModeRun)
		if err != nil {
			return err
		}

		if jsonOutput {
			if err := json.NewEncoder(os.Stdout).Encode(result); err != nil {
				return err
			}
		} else if result.Success {
			fmt.Println("Bootstrap completed successfully.")
			fmt.Printf("Run ID: %s\n", result.RunID)
		} else {
			fmt.Printf("Bootstrap failed at step %q.\n", result.FailedStepID)
			for _, e := range result.Errors {
				fmt.Printf("  Error: %s\n", e.Message)
				if e.Hint != "" {
					fmt.Printf("  Hint: %s\n", e.Hint)
				}
			}
			fmt.Printf("Transcript: %s\n", result.Transcript)
		}

		if !result.Success {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	upCmd.Flags().BoolVar(&upYes, "yes", false, "Auto-confirm phase pauses (headless)")
	upCmd.Flags().BoolVar(&upDeploy, "deploy", false, "Answer yes to the Docker build and Azure deploy branch")
	rootCmd.AddCommand(upCmd)
}
