package postgres

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sagarc03/pmsgate"
)

// Pool is the process-wide connection pool. It is safe for concurrent use.
type Pool struct {
	pool *pgxpool.Pool
}

// Stats is a snapshot of pool usage.
type Stats struct {
	Max      int32
	Total    int32
	Idle     int32
	Acquired int32
}

// NewPool creates a pool from cfg. Connections are dialed lazily on demand,
// so an unreachable store is only reported by Acquire or Ping.
func NewPool(ctx context.Context, cfg *pgxpool.Config) (*Pool, error) {
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Pool{pool: pool}, nil
}

// Acquire leases a connection, blocking while the pool is saturated. The
// returned Conn must be released; releasing it twice is a no-op.
func (p *Pool) Acquire(ctx context.Context) (pmsgate.Conn, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &leasedConn{Conn: conn}, nil
}

// leasedConn returns its connection to the pool at most once.
type leasedConn struct {
	*pgxpool.Conn
	once sync.Once
}

func (c *leasedConn) Release() {
	c.once.Do(c.Conn.Release)
}

// Ping verifies the store is reachable.
func (p *Pool) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Stats reports the current pool usage.
func (p *Pool) Stats() Stats {
	s := p.pool.Stat()
	return Stats{
		Max:      s.MaxConns(),
		Total:    s.TotalConns(),
		Idle:     s.IdleConns(),
		Acquired: s.AcquiredConns(),
	}
}

// Close closes all connections. It waits for leased connections to be released.
func (p *Pool) Close() {
	p.pool.Close()
}
