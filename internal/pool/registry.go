// Package pool keeps at most one live pgx pool per distinct connection
// string, so many low-traffic tenant branches can share one process
// without each request paying a fresh connection handshake.
package pool

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Per-pool bounds. Branch databases are numerous and mostly idle, so the
// pools are kept deliberately small.
const (
	maxConns        = 5
	maxConnIdleTime = time.Minute
	connectTimeout  = 10 * time.Second
)

// Registry owns every pool created through it. It is created once at
// startup and closed at shutdown; DeleteBranch paths call Evict so pools
// for dead branches do not outlive them.
type Registry struct {
	mu    sync.Mutex
	pools map[string]*pgxpool.Pool
}

func NewRegistry() *Registry {
	return &Registry{pools: make(map[string]*pgxpool.Pool)}
}

// Get returns the pool for connString, creating it on first use.
// Repeated calls with the same string return the same instance.
func (r *Registry) Get(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.pools[connString]; ok {
		return p, nil
	}

	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MaxConnIdleTime = maxConnIdleTime
	cfg.ConnConfig.ConnectTimeout = connectTimeout

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	r.pools[connString] = p
	return p, nil
}

// Evict closes and forgets the pool for connString, if any. Called when
// the tenant branch behind the string is deleted.
func (r *Registry) Evict(connString string) {
	r.mu.Lock()
	p, ok := r.pools[connString]
	delete(r.pools, connString)
	r.mu.Unlock()
	if ok {
		p.Close()
	}
}

// Close tears down every pool. The registry is unusable afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	pools := r.pools
	r.pools = make(map[string]*pgxpool.Pool)
	r.mu.Unlock()
	for _, p := range pools {
		p.Close()
	}
}

// QueryResult carries rows decoded into generic maps plus the affected
// or returned row count.
type QueryResult struct {
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"rowCount"`
}

// Execute runs one statement against the pool for connString. SELECTs
// return decoded rows; other statements return the affected count.
func (r *Registry) Execute(ctx context.Context, connString, query string) (*QueryResult, error) {
	p, err := r.Get(ctx, connString)
	if err != nil {
		return nil, err
	}

	rows, err := p.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Name
	}

	out := &QueryResult{}
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out.Rows = append(out.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	out.RowCount = len(out.Rows)
	if len(cols) == 0 {
		out.RowCount = int(rows.CommandTag().RowsAffected())
	}
	return out, nil
}
