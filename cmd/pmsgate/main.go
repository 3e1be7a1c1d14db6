package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/pmsgate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "pmsgate",
	Short:   "JSON-over-HTTP gateway to PostgreSQL stored procedures",
	Long: `pmsgate exposes the PMS database's stored procedures as a small REST API.
Every endpoint is one procedure call; authorization is decided by the database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable; later files override earlier (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("db-dsn", "", "database connection string (env: PMSGATE_DATABASE_DSN)")
	rootCmd.PersistentFlags().String("db-host", "", "database host or socket directory (default: /run/postgresql, env: PMSGATE_DATABASE_HOST)")
	rootCmd.PersistentFlags().Int("db-port", 5432, "database port (env: PMSGATE_DATABASE_PORT)")
	rootCmd.PersistentFlags().String("db-user", "", "database user (default: pms, env: PMSGATE_DATABASE_USER)")
	rootCmd.PersistentFlags().String("db-name", "", "database name (env: PMSGATE_DATABASE_NAME)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: PMSGATE_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
