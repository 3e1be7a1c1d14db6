// Package config provides configuration loading and validation for pmsgate.
//
// The package handles YAML configuration files, environment variables, and CLI flags
// with automatic merging and validation using go-playground/validator.
//
// # Configuration Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Configuration file(s) - multiple files merged left-to-right
//  3. Environment variables (PMSGATE_ prefix)
//  4. CLI flags
//
// # Usage
//
//	cfg, err := config.Load([]string{"config.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Store in context for subcommands
//	ctx = config.WithContext(ctx, cfg)
//
//	// Retrieve later
//	cfg, err = config.FromContext(ctx)
//
// # Environment Variables
//
// All config keys map to environment variables with PMSGATE_ prefix:
//   - server.port → PMSGATE_SERVER_PORT
//   - database.host → PMSGATE_DATABASE_HOST
//   - auth.bypass_token → PMSGATE_AUTH_BYPASS_TOKEN
//
// # Configuration Structure
//
// The Config struct contains:
//   - Server: port, max_body_size, and read/write/idle/shutdown timeouts
//   - Database: dsn or host/port/user/password/name/sslmode, pool size, connect timeout
//   - Auth: credential header name and the optional bypass token
//   - CORS: cross-origin resource sharing settings
//   - Log: logging level
//   - Env: prod or production switches logs to JSON
//
// # Validation
//
// Configuration is validated using struct tags:
//   - Port must be 1-65535
//   - Database host and user are required unless dsn is set
//   - SSL mode must be one of the libpq modes
//   - Log level must be debug, info, warn, or error
package config
