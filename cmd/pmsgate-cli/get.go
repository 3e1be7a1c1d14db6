package main

import (
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Fetch a resource",
	Long: `Fetch a resource with the stored session token.

Examples:
  pmsgate-cli get /people
  pmsgate-cli get /people/7
  pmsgate-cli get /fields/people --json`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return fail(err)
	}

	result, err := client.Get(cmd.Context(), args[0])
	if err != nil {
		return fail(err)
	}

	return getFormatter().FormatResult(os.Stdout, result)
}
