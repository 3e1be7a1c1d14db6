package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/pmsgate/config"
	"github.com/sagarc03/pmsgate/database"
)

const defaultCheckTimeout = 5 * time.Second

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the database is reachable",
	Long: `Open the connection pool, ping the database once and print the pool
statistics. Exits non-zero when the database cannot be reached.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	timeout := cfg.Database.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultCheckTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	stats := pool.Stats()
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintln(out, "database: ok")
	_, _ = fmt.Fprintf(out, "pool: max=%d total=%d idle=%d acquired=%d\n",
		stats.Max, stats.Total, stats.Idle, stats.Acquired)

	return nil
}
