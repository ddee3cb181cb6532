package storage

import (
	"context"
	"database/sql"
)

// txKey is the context key under which the active transaction travels
type txKey struct{}

type txState struct {
	store *SQLiteStorage
	tx    *sql.Tx
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// txFrom returns the transaction of this store carried by ctx, or nil
func (s *SQLiteStorage) txFrom(ctx context.Context) *sql.Tx {
	if st, ok := ctx.Value(txKey{}).(*txState); ok && st.store == s {
		return st.tx
	}
	return nil
}

// querier returns the transaction in ctx, falling back to the database
func (s *SQLiteStorage) querier(ctx context.Context) querier {
	if tx := s.txFrom(ctx); tx != nil {
		return tx
	}
	return s.db
}

// InTx reports whether ctx carries an active transaction of this store
func (s *SQLiteStorage) InTx(ctx context.Context) bool {
	return s.txFrom(ctx) != nil
}

// RunInTx runs fn inside a transaction and commits if fn returns nil.
// Any error or panic from fn rolls the transaction back; a panic is re-raised
// after the rollback.
//
// A call made with a context that already carries a transaction of this store
// joins it: fn runs directly and the outermost call decides commit or rollback.
//
// Cancellation is honored only before the transaction begins. Once begun, fn
// receives a context detached from ctx's cancellation so the transaction always
// ends in a commit or a rollback.
func (s *SQLiteStorage) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.txFrom(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	txCtx := context.WithoutCancel(ctx)
	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return classify("failed to begin transaction", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// Rollback error is secondary to whatever aborted the unit
		_ = tx.Rollback()
		if p := recover(); p != nil {
			panic(p)
		}
	}()

	if err := fn(context.WithValue(txCtx, txKey{}, &txState{store: s, tx: tx})); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return classify("failed to commit transaction", err)
	}
	committed = true
	return nil
}
