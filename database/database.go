package database

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/pmsgate/database/postgres"
)

// Config holds the configuration for connecting to the procedure store.
type Config struct {
	// DSN is a complete connection string. When set it takes precedence over
	// the discrete connection fields below.
	DSN string `mapstructure:"dsn"`
	// Host is a hostname, an IP address or a unix socket directory.
	Host     string `mapstructure:"host" validate:"required_without=DSN"`
	Port     int    `mapstructure:"port" validate:"min=0,max=65535"`
	User     string `mapstructure:"user" validate:"required_without=DSN"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	// SSLMode is the transport security mode.
	SSLMode string `mapstructure:"sslmode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
	// MaxConns is the maximum number of pooled connections.
	MaxConns       int32         `mapstructure:"max_conns" validate:"min=1"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"min=0"`
}

// ConnString renders the connection string handed to pgx.
func (c Config) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}

	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+"="+quoteValue(value))
		}
	}

	add("host", c.Host)
	if c.Port != 0 {
		add("port", strconv.Itoa(c.Port))
	}
	add("user", c.User)
	add("password", c.Password)
	add("dbname", c.Name)
	add("sslmode", c.SSLMode)
	if c.ConnectTimeout > 0 {
		// connect_timeout is whole seconds and 0 disables it, so round up.
		add("connect_timeout", strconv.Itoa(int(math.Ceil(c.ConnectTimeout.Seconds()))))
	}

	return strings.Join(parts, " ")
}

// quoteValue quotes a keyword/value connection string value when it contains
// whitespace, quotes or backslashes.
func quoteValue(v string) string {
	if !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// PoolConfig parses c into a pgxpool configuration. No connection is opened
// until the first Acquire.
func (c Config) PoolConfig() (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(c.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	if c.MaxConns > 0 {
		poolCfg.MaxConns = c.MaxConns
	}
	poolCfg.MinConns = 0

	return poolCfg, nil
}

// Connect creates the process-wide connection pool for the configured store.
// The returned Pool must be closed when the process shuts down.
func Connect(ctx context.Context, cfg Config) (*postgres.Pool, error) {
	poolCfg, err := cfg.PoolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return pool, nil
}
