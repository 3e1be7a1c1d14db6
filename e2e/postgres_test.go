package e2e_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	testDSNOnce sync.Once
	testCleanup func()
	testDSN     string
)

// fixtureSchema is a miniature people store: sessions issued by login gate
// every protected procedure, and missing rows come back as NULL.
const fixtureSchema = `
CREATE TABLE accounts (email text PRIMARY KEY, password text NOT NULL);
CREATE TABLE sessions (token text PRIMARY KEY, email text NOT NULL REFERENCES accounts);
CREATE TABLE people (id serial PRIMARY KEY, data jsonb NOT NULL);

INSERT INTO accounts VALUES ('ada@example.com', 'lovelace');

CREATE FUNCTION login(emailaddress text, password text)
RETURNS json LANGUAGE plpgsql AS $$
DECLARE
	t text;
BEGIN
	IF NOT EXISTS (SELECT 1 FROM accounts a WHERE a.email = login.emailaddress AND a.password = login.password) THEN
		RETURN NULL;
	END IF;
	t := md5(random()::text || clock_timestamp()::text);
	INSERT INTO sessions VALUES (t, login.emailaddress);
	RETURN to_json(t);
END
$$;

CREATE FUNCTION check_session(token text)
RETURNS void LANGUAGE plpgsql AS $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM sessions s WHERE s.token = check_session.token) THEN
		RAISE EXCEPTION 'invalid session';
	END IF;
END
$$;

CREATE FUNCTION people_add(token text, data jsonb)
RETURNS json LANGUAGE plpgsql AS $$
DECLARE
	result json;
BEGIN
	PERFORM check_session(people_add.token);
	INSERT INTO people (data) VALUES (people_add.data)
	RETURNING json_build_object('id', people.id, 'data', people.data) INTO result;
	RETURN result;
END
$$;

CREATE FUNCTION people_get(token text, people_id int DEFAULT NULL)
RETURNS json LANGUAGE plpgsql AS $$
BEGIN
	PERFORM check_session(people_get.token);
	IF people_get.people_id IS NULL THEN
		RETURN (SELECT coalesce(json_agg(json_build_object('id', p.id, 'data', p.data) ORDER BY p.id), '[]'::json) FROM people p);
	END IF;
	RETURN (SELECT json_build_object('id', p.id, 'data', p.data) FROM people p WHERE p.id = people_get.people_id);
END
$$;

CREATE FUNCTION people_set(token text, people_id int, data jsonb)
RETURNS json LANGUAGE plpgsql AS $$
DECLARE
	result json;
BEGIN
	PERFORM check_session(people_set.token);
	UPDATE people p SET data = people_set.data WHERE p.id = people_set.people_id
	RETURNING json_build_object('id', p.id, 'data', p.data) INTO result;
	RETURN result;
END
$$;

CREATE FUNCTION password_forgot(user_email text)
RETURNS json LANGUAGE sql AS $$
	SELECT CASE WHEN EXISTS (SELECT 1 FROM accounts a WHERE a.email = user_email) THEN 'true'::json END
$$;
`

// getSharedPostgresDatabase returns a shared PostgreSQL database for E2E tests.
// The container is reused across all tests for performance.
func getSharedPostgresDatabase(t *testing.T) (dsn string) {
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

		if _, err := setup.Exec(ctx, fixtureSchema); err != nil {
			testCleanup()
			t.Fatalf("could not install fixture schema: %v", err)
		}

		testDSN = connectionStr
	})

	return testDSN
}
