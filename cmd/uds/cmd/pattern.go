package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// patternCmd represents the pattern command
var patternCmd = &cobra.Command{
	Use:   "pattern",
	Short: "Analyze patterns and detect anomalies",
	Long:  `Use pattern commands to analyze data patterns, detect anomalies, and identify trends in your telemetry data.`,
}

// analyzeCmd analyzes patterns
var analyzeCmd = &cobra.Command{
	Use:   "analyze <event-type>",
	Short: "Analyze patterns in data",
	Long:  `Analyze patterns, trends, and anomalies in the specified event type data.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runPatternAnalyze,
}

func init() {
	// Add subcommands
	patternCmd.AddCommand(analyzeCmd)

	// Analyze command flags
	analyzeCmd.Flags().StringSlice("attributes", []string{}, "Specific attributes to analyze")
	analyzeCmd.Flags().String("time-range", "24h", "Time range for analysis")
	analyzeCmd.Flags().String("pattern-type", "all", "Type of patterns to detect (trend, seasonal, anomaly, all)")
}

func runPatternAnalyze(cmd *cobra.Command, args []string) error {
	eventType := args[0]
	attributes, _ := cmd.Flags().GetStringSlice("attributes")
	timeRange, _ := cmd.Flags().GetString("time-range")
	patternType, _ := cmd.Flags().GetString("pattern-type")

	body := map[string]interface{}{
		"eventType": eventType,
		"timeRange": timeRange,
		"options": map[string]interface{}{
			"patternType": patternType,
		},
	}

	if len(attributes) > 0 {
		body["attributes"] = attributes
	}

	resp, err := makeAPIRequest("POST", "/patterns/analyze", nil, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// For now, pattern analysis is not implemented
	return fmt.Errorf("pattern analysis not yet implemented in the API")
}