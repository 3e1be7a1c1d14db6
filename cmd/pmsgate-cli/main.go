package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/pmsgate/clientcli"
)

var (
	version = "dev"

	cfgFile     string
	profileName string
	endpoint    string
	token       string
	jsonOutput  bool
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:     "pmsgate-cli",
	Version: version,
	Short:   "Client for the pmsgate API",
	Long: `pmsgate-cli - Client for the pmsgate procedure gateway

Log in once to store a session token in a profile, then call any route:
  pmsgate-cli login
  pmsgate-cli get /people
  pmsgate-cli send PUT /people/7 person.json`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.pmsgate/config.yaml, env: PMSGATE_CLI_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", "", "profile name (env: PMSGATE_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "gateway URL (default: http://localhost:8000, env: PMSGATE_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "session token (env: PMSGATE_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(passwordCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getConfigPath resolves the profile file: flag, then env, then default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// getProfileName resolves the selected profile: flag, then env, then default.
func getProfileName() string {
	if profileName != "" {
		return profileName
	}
	return clientcli.ProfileFromEnv()
}

// buildConfig merges config from the profile file, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	fileCfg, err := clientcli.LoadConfigFile(getConfigPath())
	if err != nil {
		// Only error if user explicitly asked for a file or profile
		if cfgFile != "" || getProfileName() != "" {
			return nil, err
		}
	} else if p, profileErr := fileCfg.GetProfile(getProfileName()); profileErr == nil {
		configs = append(configs, clientcli.ConfigFromProfile(p))
	} else if getProfileName() != "" {
		return nil, profileErr
	}

	configs = append(configs,
		clientcli.ConfigFromEnv(),
		&clientcli.Config{Endpoint: endpoint, Token: token},
	)

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}

// fail prints err with the active formatter and returns it.
func fail(err error) error {
	_ = getFormatter().FormatError(os.Stderr, err)
	return err
}
