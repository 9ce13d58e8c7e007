package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// dashboardCmd represents the dashboard command
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Create and manage dashboards",
	Long:  `Use dashboard commands to create New Relic dashboards from specifications or templates.`,
}

// createDashboardCmd creates a dashboard
var createDashboardCmd = &cobra.Command{
	Use:   "create <spec-file>",
	Short: "Create dashboard from specification",
	Long: `Create a New Relic dashboard from a YAML or JSON specification file.
	
The specification should include dashboard name, widgets, and layout configuration.`,
	Args: cobra.ExactArgs(1),
	RunE: runDashboardCreate,
}

func init() {
	// Add subcommands
	dashboardCmd.AddCommand(createDashboardCmd)

	// Create command flags
	createDashboardCmd.Flags().String("name", "", "Override dashboard name")
	createDashboardCmd.Flags().String("account", "", "Target account ID")
}

func runDashboardCreate(cmd *cobra.Command, args []string) error {
	specFile := args[0]
	
	// TODO: Read spec file and parse it
	_ = specFile

	// For now, dashboard creation is not implemented
	return fmt.Errorf("dashboard creation not yet implemented in the API")
}