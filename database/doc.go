// Package database configures and opens the connection pool for the procedure store.
//
// The store is PostgreSQL. The pool is created once at process startup, shared
// by every request, and dials connections lazily: Connect succeeds even when the
// store is down, and the first call reports the failure.
//
// # Configuration
//
// Config covers the address (Host, Port, Name), the credentials (User, Password),
// the pool size (MaxConns) and the transport security mode (SSLMode). A full DSN
// may be given instead of the discrete fields.
//
// # Usage
//
//	cfg := database.Config{
//	    Host:     "/run/postgresql",
//	    User:     "pms",
//	    SSLMode:  "disable",
//	    MaxConns: 10,
//	}
//
//	pool, err := database.Connect(ctx, cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pool.Close()
//
// # Subpackages
//
//   - database/postgres: pgxpool adapter implementing pmsgate.Pool
package database
