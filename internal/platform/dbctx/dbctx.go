package dbctx

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB

	commit *commitHooks
}

type commitHooks struct {
	mu  sync.Mutex
	fns []func()
}

// DB returns the transaction when present, otherwise fallback scoped to Ctx.
func (c Context) DB(fallback *gorm.DB) *gorm.DB {
	t := c.Tx
	if t == nil {
		t = fallback
	}
	return t.WithContext(c.requestContext())
}

func (c Context) requestContext() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

// AfterCommit defers fn until the transaction opened by Transaction commits.
// fn is dropped on rollback. Without such a transaction fn runs immediately.
func (c Context) AfterCommit(fn func()) {
	if c.Tx == nil || c.commit == nil {
		fn()
		return
	}
	c.commit.mu.Lock()
	c.commit.fns = append(c.commit.fns, fn)
	c.commit.mu.Unlock()
}

// Transaction runs fn in a transaction on db, or inside c.Tx when the caller
// already holds one. AfterCommit hooks registered by fn run once the
// outermost Transaction commits.
func Transaction(c Context, db *gorm.DB, fn func(inner Context) error) error {
	if c.Tx != nil {
		return fn(c)
	}
	hooks := &commitHooks{}
	ctx := c.requestContext()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Context{Ctx: ctx, Tx: tx, commit: hooks})
	})
	if err != nil {
		return err
	}
	hooks.mu.Lock()
	fns := hooks.fns
	hooks.fns = nil
	hooks.mu.Unlock()
	for _, f := range fns {
		f()
	}
	return nil
}
