package pmsgate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Conn is a leased store connection. It is owned by exactly one call until
// Release, which must be safe to call more than once.
type Conn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Release()
}

// Pool hands out connections. Acquire blocks until a connection is free or the
// store cannot be reached.
type Pool interface {
	Acquire(ctx context.Context) (Conn, error)
}

// Invoker executes procedure calls against a Pool.
type Invoker struct {
	pool Pool
}

// NewInvoker creates an Invoker backed by pool.
func NewInvoker(pool Pool) (*Invoker, error) {
	if pool == nil {
		return nil, errors.New("pool cannot be nil")
	}
	return &Invoker{pool: pool}, nil
}

// Invoke runs call on a single leased connection and returns the JSON value in
// the first column of the first row.
//
// A result with no rows, or a NULL first column, yields a copy of call.NotFound.
// Failures are returned as *Error. The connection is released on every path,
// including a panic while reading the row.
func (inv *Invoker) Invoke(ctx context.Context, call ProcedureCall) (json.RawMessage, error) {
	if err := call.Validate(); err != nil {
		return nil, TransportError(err.Error(), err)
	}

	conn, err := inv.pool.Acquire(ctx)
	if err != nil {
		return nil, TransportError(err.Error(), fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Release()

	slog.DebugContext(ctx, "invoking procedure", "procedure", call.Procedure, "args", len(call.Args))

	var raw []byte
	err = conn.QueryRow(ctx, call.Statement(), call.Values()...).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound(call)
	}
	if err != nil {
		return nil, Classify(err)
	}
	if raw == nil {
		return nil, notFound(call)
	}

	if !json.Valid(raw) {
		return nil, TransportError(fmt.Sprintf("procedure %s returned a value that is not JSON", call.Procedure), nil)
	}

	return json.RawMessage(raw), nil
}

func notFound(call ProcedureCall) *Error {
	nf := *call.NotFound
	return &nf
}
