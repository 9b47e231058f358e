package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jmoiron/sqlx"
)

// StmtCache lazily prepares fixed statements and shares them across callers.
// Statements are keyed by a stable logical id rather than their text, so a
// query built from configured column names is prepared exactly once.
type StmtCache struct {
	db    *sqlx.DB
	mu    sync.RWMutex
	stmts map[string]*sqlx.Stmt
}

func NewStmtCache(db *sqlx.DB) *StmtCache {
	return &StmtCache{db: db, stmts: make(map[string]*sqlx.Stmt)}
}

// Get returns the prepared statement for id, preparing query on first use.
// query uses '?' placeholders and is rebound for the driver.
func (c *StmtCache) Get(ctx context.Context, id, query string) (*sqlx.Stmt, error) {
	c.mu.RLock()
	stmt, ok := c.stmts[id]
	c.mu.RUnlock()
	if ok {
		return stmt, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if stmt, ok := c.stmts[id]; ok {
		return stmt, nil
	}
	stmt, err := c.db.PreparexContext(ctx, c.db.Rebind(query))
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", id, err)
	}
	c.stmts[id] = stmt
	return stmt, nil
}

// Len returns the number of prepared statements.
func (c *StmtCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.stmts)
}

// Close releases every prepared statement.
func (c *StmtCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for id, stmt := range c.stmts {
		if err := stmt.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", id, err))
		}
		delete(c.stmts, id)
	}
	return errors.Join(errs...)
}
