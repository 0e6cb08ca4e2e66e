package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agrisense/agrisense/internal/services/gateway/app"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print the full dashboard payload",
	RunE: func(cmd *cobra.Command, args []string) error {
		var data app.DashboardData
		if err := getJSON(gatewayURL+"/dashboard/data", &data); err != nil {
			return err
		}
		return printJSON(data)
	},
}

var readingsCmd = &cobra.Command{
	Use:     "readings",
	Aliases: []string{"r"},
	Short:   "Print the latest soil reading per zone",
	RunE: func(cmd *cobra.Command, args []string) error {
		var data app.DashboardData
		if err := getJSON(gatewayURL+"/dashboard/data", &data); err != nil {
			return err
		}
		return printJSON(data.Zones)
	},
}

var adviceCmd = &cobra.Command{
	Use:     "advice [zone]",
	Aliases: []string{"a"},
	Short:   "Print the current irrigation schedule, optionally for one zone",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data app.DashboardData
		if err := getJSON(gatewayURL+"/dashboard/data", &data); err != nil {
			return err
		}
		if len(args) == 0 {
			return printJSON(data.Schedule)
		}

		zone := args[0]
		for _, row := range data.Schedule {
			if row.ZoneID == zone {
				return printJSON(row)
			}
		}
		return fmt.Errorf("no advice for zone %q", zone)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(readingsCmd)
	rootCmd.AddCommand(adviceCmd)
}
