package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pipeboot/pipeboot/internal/confirm"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Append AZURE_REGION and AZURE_PROFILE to the env file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newEngine(&confirm.Auto{})
		if err != nil {
			return err
		}
		region, profile, err := e.CaptureCredentials()
		if err != nil {
			return err
		}

		if jsonOutput {
			return json.NewEncoder(os.Stdout).Encode(map[string]string{
				"region":  region,
				"profile": profile,
			})
		}
		fmt.Printf("Appended to %s:\n", e.Env.Path)
		fmt.Printf("  AZURE_REGION=%s\n", region)
		fmt.Printf("  AZURE_PROFILE=%s\n", profile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
}
