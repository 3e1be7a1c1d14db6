package main

import (
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/pmsgate/clientcli"
)

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Password recovery",
}

var passwordForgotCmd = &cobra.Command{
	Use:   "forgot <email>",
	Short: "Request a password reset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient()
		if err != nil {
			return fail(err)
		}

		raw, err := client.ForgotPassword(cmd.Context(), args[0])
		if err != nil {
			return fail(err)
		}

		return getFormatter().FormatResult(os.Stdout, &clientcli.CallResult{
			Method: "POST", Path: "/password_forgot", Status: 200, Body: raw,
		})
	},
}

var passwordResetCmd = &cobra.Command{
	Use:   "reset <reset-token>",
	Short: "Set a new password with a reset token",
	Long: `Set a new password with the reset token delivered by 'password forgot'.
The new password is prompted for with masked input.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		prompt := promptui.Prompt{
			Label: "New password",
			Mask:  '*',
		}
		newPassword, err := prompt.Run()
		if err != nil {
			return handlePromptError(err)
		}

		client, err := getClient()
		if err != nil {
			return fail(err)
		}

		raw, err := client.ResetPassword(cmd.Context(), args[0], newPassword)
		if err != nil {
			return fail(err)
		}

		return getFormatter().FormatResult(os.Stdout, &clientcli.CallResult{
			Method: "POST", Path: "/password_reset", Status: 200, Body: raw,
		})
	},
}

func init() {
	passwordCmd.AddCommand(passwordForgotCmd)
	passwordCmd.AddCommand(passwordResetCmd)
}
