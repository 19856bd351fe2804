package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show frontend and backend reachability",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, _ []string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}

	status, err := client.QuickStatus(cmd.Context())
	if err != nil {
		cmd.SilenceUsage = true
		return fmt.Errorf("quick status from %s: %w", client.BaseURL(), err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Frontend  %s  %s\n", serviceLabel(status.Frontend.Status), status.Frontend.URL)
	fmt.Fprintf(out, "Backend   %s  %s\n", serviceLabel(status.Backend.Status), status.Backend.URL)
	fmt.Fprintf(out, "Overall   %s\n", status.OverallStatus)
	return nil
}
