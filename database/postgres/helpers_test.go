package postgres_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/sagarc03/pmsgate/database/postgres"
)

var (
	testDSN     string
	testDSNOnce sync.Once
	testCleanup func()
)

// fixtureProcedures are small stand-ins for the store's procedures; each
// exercises one outcome of a call.
const fixtureProcedures = `
CREATE OR REPLACE FUNCTION echo(token text, data jsonb DEFAULT NULL)
RETURNS json LANGUAGE sql AS $$
	SELECT json_build_object('token', token, 'data', data)
$$;

CREATE OR REPLACE FUNCTION item_get(token text, item_id int)
RETURNS json LANGUAGE sql AS $$
	SELECT CASE WHEN item_id > 0 THEN json_build_object('id', item_id) END
$$;

CREATE OR REPLACE FUNCTION no_rows(token text)
RETURNS SETOF json LANGUAGE sql AS $$
	SELECT '{}'::json WHERE false
$$;

CREATE OR REPLACE FUNCTION reject(token text)
RETURNS json LANGUAGE plpgsql AS $$
BEGIN
	RAISE EXCEPTION 'token % may not do that', token;
END
$$;

CREATE OR REPLACE FUNCTION slow(token text)
RETURNS json LANGUAGE plpgsql AS $$
BEGIN
	PERFORM pg_sleep(0.01);
	RETURN json_build_object('slept', true);
END
$$;
`

// getSharedTestDSN starts one postgres container for the package, installs the
// fixture procedures and returns its connection string.
func getSharedTestDSN(t *testing.T) string {
	t.Helper()

	testDSNOnce.Do(func() {
		ctx := context.Background()

		pgContainer, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			t.Fatalf("failed to start postgres container: %v", err)
		}

		testCleanup = func() {
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				t.Logf("failed to terminate container: %s", err)
			}
		}

		connectionStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			testCleanup()
			t.Fatalf("failed to get connection string: %v", err)
		}

		setup, err := pgxpool.New(ctx, connectionStr)
		if err != nil {
			testCleanup()
			t.Fatalf("could not connect to database: %v", err)
		}
		defer setup.Close()

		if _, err := setup.Exec(ctx, fixtureProcedures); err != nil {
			testCleanup()
			t.Fatalf("could not install fixture procedures: %v", err)
		}

		testDSN = connectionStr
	})

	return testDSN
}

// newTestPool returns a fresh pool of at most maxConns connections against the
// shared container.
func newTestPool(t *testing.T, maxConns int32) *postgres.Pool {
	t.Helper()

	cfg, err := pgxpool.ParseConfig(getSharedTestDSN(t))
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.MaxConns = maxConns

	pool, err := postgres.NewPool(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return pool
}
