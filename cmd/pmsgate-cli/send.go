package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var sendData string

var sendCmd = &cobra.Command{
	Use:   "send <method> <path> [file|-]",
	Short: "Send a JSON body to a resource",
	Long: `Send a JSON body with the stored session token.

The body is read from --data, from the named file, or from stdin when the
file is "-". Without any of them the request has no body.

Examples:
  pmsgate-cli send POST /people person.json
  pmsgate-cli send PUT /roles/3 --data '{"name":"admin"}'
  cat role.json | pmsgate-cli send POST /roles -`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVarP(&sendData, "data", "d", "", "inline JSON body")
}

func runSend(cmd *cobra.Command, args []string) error {
	body, err := readBody(cmd, args[2:])
	if err != nil {
		return fail(err)
	}

	client, err := getClient()
	if err != nil {
		return fail(err)
	}

	result, err := client.Send(cmd.Context(), args[0], args[1], body)
	if err != nil {
		return fail(err)
	}

	return getFormatter().FormatResult(os.Stdout, result)
}

func readBody(cmd *cobra.Command, source []string) (json.RawMessage, error) {
	switch {
	case sendData != "" && len(source) > 0:
		return nil, fmt.Errorf("use either --data or a body file, not both")
	case sendData != "":
		return json.RawMessage(sendData), nil
	case len(source) == 0:
		return nil, nil
	case source[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(filepath.Clean(source[0])) //#nosec G304 -- path is user-provided body file
		if err != nil {
			return nil, fmt.Errorf("read body file: %w", err)
		}
		return data, nil
	}
}
