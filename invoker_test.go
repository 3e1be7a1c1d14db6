package pmsgate_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sagarc03/pmsgate"
)

// fakeRow returns raw from Scan, or err, or panics when panicMsg is set.
type fakeRow struct {
	raw      []byte
	err      error
	panicMsg string
}

func (r fakeRow) Scan(dest ...any) error {
	if r.panicMsg != "" {
		panic(r.panicMsg)
	}
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.raw
	return nil
}

type SpyConn struct {
	mock.Mock
}

func (c *SpyConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := c.Called(ctx, sql, args)
	return called.Get(0).(pgx.Row)
}

func (c *SpyConn) Release() {
	c.Called()
}

type SpyPool struct {
	mock.Mock
}

func (p *SpyPool) Acquire(ctx context.Context) (pmsgate.Conn, error) {
	args := p.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pmsgate.Conn), args.Error(1)
}

func notFound404() *pmsgate.Error {
	return pmsgate.NotFoundError(http.StatusNotFound, "Id not found (or no read access)")
}

func newInvoker(t *testing.T, pool pmsgate.Pool) *pmsgate.Invoker {
	t.Helper()
	inv, err := pmsgate.NewInvoker(pool)
	require.NoError(t, err, "new invoker")
	return inv
}

func TestNewInvoker_NilPool(t *testing.T) {
	_, err := pmsgate.NewInvoker(nil)
	assert.Error(t, err)
}

func TestInvoker_Invoke(t *testing.T) {
	call := pmsgate.ProcedureCall{
		Procedure: "people_get",
		Args: []pmsgate.Arg{
			pmsgate.String("token", "abc"),
			pmsgate.Int32("people_id", 7),
		},
		NotFound: notFound404(),
	}
	wantSQL := `SELECT "people_get"("token" := $1, "people_id" := $2)`
	wantArgs := []any{"abc", int32(7)}

	tests := []struct {
		name       string
		row        fakeRow
		wantJSON   string
		wantKind   pmsgate.Kind
		wantStatus int
		wantMsg    string
	}{
		{
			name:     "success returns first column",
			row:      fakeRow{raw: []byte(`{"id":7,"name":"Ada"}`)},
			wantJSON: `{"id":7,"name":"Ada"}`,
		},
		{
			name:     "json null is a successful value",
			row:      fakeRow{raw: []byte(`null`)},
			wantJSON: `null`,
		},
		{
			name:       "zero rows maps to declared not found",
			row:        fakeRow{err: pgx.ErrNoRows},
			wantKind:   pmsgate.KindNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Id not found (or no read access)",
		},
		{
			name:       "sql null maps to declared not found",
			row:        fakeRow{raw: nil},
			wantKind:   pmsgate.KindNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "Id not found (or no read access)",
		},
		{
			name:       "server error is an application error",
			row:        fakeRow{err: &pgconn.PgError{Code: "P0001", Message: "email already registered"}},
			wantKind:   pmsgate.KindApplication,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "email already registered",
		},
		{
			name:       "driver error is a transport error",
			row:        fakeRow{err: errors.New("unexpected EOF")},
			wantKind:   pmsgate.KindTransport,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "unexpected EOF",
		},
		{
			name:       "non json value is a transport error",
			row:        fakeRow{raw: []byte(`not json`)},
			wantKind:   pmsgate.KindTransport,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn := new(SpyConn)
			conn.On("QueryRow", mock.Anything, wantSQL, wantArgs).Return(tt.row).Once()
			conn.On("Release").Return().Once()

			pool := new(SpyPool)
			pool.On("Acquire", mock.Anything).Return(conn, nil).Once()

			got, err := newInvoker(t, pool).Invoke(context.Background(), call)

			if tt.wantJSON != "" {
				require.NoError(t, err)
				assert.JSONEq(t, tt.wantJSON, string(got))
			} else {
				require.Error(t, err)
				var e *pmsgate.Error
				require.ErrorAs(t, err, &e)
				assert.Equal(t, tt.wantKind, e.Kind)
				assert.Equal(t, tt.wantStatus, e.Status)
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, e.Message)
				}
				assert.Nil(t, got)
			}

			pool.AssertExpectations(t)
			conn.AssertExpectations(t)
		})
	}
}

func TestInvoker_Invoke_NotFoundIsACopy(t *testing.T) {
	declared := notFound404()
	call := pmsgate.ProcedureCall{Procedure: "roles_get", NotFound: declared}

	conn := new(SpyConn)
	conn.On("QueryRow", mock.Anything, `SELECT "roles_get"()`, []any{}).Return(fakeRow{err: pgx.ErrNoRows})
	conn.On("Release").Return()
	pool := new(SpyPool)
	pool.On("Acquire", mock.Anything).Return(conn, nil)

	_, err := newInvoker(t, pool).Invoke(context.Background(), call)

	var e *pmsgate.Error
	require.ErrorAs(t, err, &e)
	assert.NotSame(t, declared, e)
	assert.Equal(t, *declared, *e)
}

func TestInvoker_Invoke_AcquireFailure(t *testing.T) {
	pool := new(SpyPool)
	pool.On("Acquire", mock.Anything).Return(nil, &pgconn.PgError{Message: "password authentication failed"})

	_, err := newInvoker(t, pool).Invoke(context.Background(), pmsgate.ProcedureCall{
		Procedure: "login",
		NotFound:  notFound404(),
	})

	var e *pmsgate.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, pmsgate.KindTransport, e.Kind, "acquire failures are always transport errors")
	assert.Equal(t, http.StatusInternalServerError, e.Status)
	assert.ErrorIs(t, err, pmsgate.ErrInternal)
}

func TestInvoker_Invoke_InvalidCallNeverAcquires(t *testing.T) {
	pool := new(SpyPool)

	_, err := newInvoker(t, pool).Invoke(context.Background(), pmsgate.ProcedureCall{
		Procedure: "drop table; --",
		NotFound:  notFound404(),
	})

	assert.ErrorIs(t, err, pmsgate.ErrInternal)
	pool.AssertNotCalled(t, "Acquire", mock.Anything)
}

func TestInvoker_Invoke_ReleasesOnPanic(t *testing.T) {
	conn := new(SpyConn)
	conn.On("QueryRow", mock.Anything, mock.Anything, mock.Anything).Return(fakeRow{panicMsg: "boom"})
	conn.On("Release").Return().Once()
	pool := new(SpyPool)
	pool.On("Acquire", mock.Anything).Return(conn, nil)

	inv := newInvoker(t, pool)
	assert.PanicsWithValue(t, "boom", func() {
		_, _ = inv.Invoke(context.Background(), pmsgate.ProcedureCall{Procedure: "people_get", NotFound: notFound404()})
	})

	conn.AssertExpectations(t)
}

// countingPool is a bounded pool that detects double leases and double returns.
type countingPool struct {
	free       chan *countingConn
	violations atomic.Int64
}

type countingConn struct {
	inUse atomic.Bool
}

type lease struct {
	pool *countingPool
	conn *countingConn
	once sync.Once
}

func newCountingPool(size int) *countingPool {
	p := &countingPool{free: make(chan *countingConn, size)}
	for range size {
		p.free <- &countingConn{}
	}
	return p
}

func (p *countingPool) Available() int {
	return len(p.free)
}

func (p *countingPool) Acquire(ctx context.Context) (pmsgate.Conn, error) {
	select {
	case c := <-p.free:
		if !c.inUse.CompareAndSwap(false, true) {
			p.violations.Add(1)
		}
		return &lease{pool: p, conn: c}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *lease) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	switch {
	case strings.Contains(sql, `"ok"`):
		return fakeRow{raw: []byte(`{"ok":true}`)}
	case strings.Contains(sql, `"raise"`):
		return fakeRow{err: &pgconn.PgError{Message: "rule violated"}}
	case strings.Contains(sql, `"empty"`):
		return fakeRow{err: pgx.ErrNoRows}
	default:
		return fakeRow{err: errors.New("connection reset by peer")}
	}
}

func (l *lease) Release() {
	l.once.Do(func() {
		if !l.conn.inUse.CompareAndSwap(true, false) {
			l.pool.violations.Add(1)
		}
		l.pool.free <- l.conn
	})
}

func TestInvoker_Invoke_ConcurrentCallsNeverLeak(t *testing.T) {
	const poolSize = 4
	const calls = 200

	pool := newCountingPool(poolSize)
	inv := newInvoker(t, pool)
	procedures := []string{"ok", "raise", "empty", "broken"}

	var wg sync.WaitGroup
	var succeeded atomic.Int64
	for i := range calls {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			raw, err := inv.Invoke(context.Background(), pmsgate.ProcedureCall{
				Procedure: procedures[i%len(procedures)],
				Args:      []pmsgate.Arg{pmsgate.String("token", fmt.Sprintf("t%d", i))},
				NotFound:  notFound404(),
			})
			if err == nil && json.Valid(raw) {
				succeeded.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, poolSize, pool.Available(), "every lease returned")
	assert.Zero(t, pool.violations.Load(), "no connection leased twice or returned twice")
	assert.Equal(t, int64(calls/len(procedures)), succeeded.Load())
}

func TestInvoker_Invoke_BlocksUntilContextDone(t *testing.T) {
	pool := newCountingPool(1)
	held, err := pool.Acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = newInvoker(t, pool).Invoke(ctx, pmsgate.ProcedureCall{Procedure: "ok", NotFound: notFound404()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, pmsgate.ErrInternal)

	held.Release()
	held.Release()
	assert.Equal(t, 1, pool.Available())
	assert.Zero(t, pool.violations.Load())
}
