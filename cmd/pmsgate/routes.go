package main

import (
	"github.com/spf13/cobra"

	pmshttp "github.com/sagarc03/pmsgate/http"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the route table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return pmshttp.WriteRouteTable(cmd.OutOrStdout(), pmshttp.Routes())
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
}
