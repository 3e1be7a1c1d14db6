package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/pmsgate/clientcli"
)

var (
	loginUser     string
	loginPassword string
	loginNoSave   bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Long: `Log in with an email address and password.

The token returned by the gateway is saved to the selected profile (or the
default profile) unless --no-save is given. Missing credentials are prompted
for; the password prompt is masked.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "email address")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "password (prompted when omitted)")
	loginCmd.Flags().BoolVar(&loginNoSave, "no-save", false, "print the token without saving it")
}

func runLogin(cmd *cobra.Command, _ []string) error {
	user := loginUser
	if user == "" {
		prompt := promptui.Prompt{
			Label: "Email",
			Validate: func(input string) error {
				if strings.TrimSpace(input) == "" {
					return errors.New("email is required")
				}
				return nil
			},
		}
		var err error
		if user, err = prompt.Run(); err != nil {
			return handlePromptError(err)
		}
	}

	password := loginPassword
	if password == "" {
		prompt := promptui.Prompt{
			Label: "Password",
			Mask:  '*',
		}
		var err error
		if password, err = prompt.Run(); err != nil {
			return handlePromptError(err)
		}
	}

	client, err := getClient()
	if err != nil {
		return fail(err)
	}

	result, err := client.Login(cmd.Context(), strings.TrimSpace(user), password)
	if err != nil {
		return fail(err)
	}

	saved := ""
	if !loginNoSave {
		saved, err = saveToken(client.Endpoint(), result)
		if err != nil {
			return fail(err)
		}
	}

	return getFormatter().FormatLogin(os.Stdout, result, saved)
}

// saveToken stores the token on the selected profile. A missing profile is
// created for the endpoint, named "default" when none was selected.
func saveToken(endpointURL string, result *clientcli.LoginResult) (string, error) {
	configPath := getConfigPath()

	cfg, err := clientcli.LoadConfigFile(configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("load config: %w", err)
		}
		cfg = &clientcli.ConfigFile{}
	}

	name := getProfileName()
	if _, err := cfg.GetProfile(name); err != nil {
		if name == "" {
			name = "default"
		}
		p := clientcli.Profile{Name: name, Endpoint: endpointURL, Default: len(cfg.Profiles) == 0}
		if err := cfg.AddProfile(p); err != nil {
			return "", err
		}
	}

	if err := cfg.SetToken(name, result.User, result.Token); err != nil {
		return "", err
	}

	p, err := cfg.GetProfile(name)
	if err != nil {
		return "", err
	}

	if err := cfg.Save(configPath); err != nil {
		return "", fmt.Errorf("save config: %w", err)
	}

	return p.Name, nil
}
