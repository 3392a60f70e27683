// Package sqldb implements the store interfaces on database/sql. The sqlite
// and postgres drivers supply a Dialect and a migration runner; every query
// lives here once.
package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/aussiebroadwan/tenantry/internal/tenantry/store"
)

// Dialect captures the differences between SQL engines that matter to the
// repositories.
type Dialect struct {
	Name string

	// Numbered placeholders ($1, $2, ...) instead of ?.
	NumberedParams bool

	// IsUniqueViolation recognises the engine's unique constraint error.
	IsUniqueViolation func(error) bool
}

// rebind rewrites ? placeholders for engines that need numbered ones.
func (d Dialect) rebind(query string) string {
	if !d.NumberedParams {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn binds a querier to a dialect.
type conn struct {
	q querier
	d Dialect
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := c.q.ExecContext(ctx, c.d.rebind(query), args...)
	return res, c.mapErr(err)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return c.q.QueryContext(ctx, c.d.rebind(query), args...)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.d.rebind(query), args...)
}

func (c conn) mapErr(err error) error {
	if err != nil && c.d.IsUniqueViolation != nil && c.d.IsUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// Store is a database/sql backed store.Store.
type Store struct {
	db      *sql.DB
	dialect Dialect
	migrate func(*sql.DB) error
}

// New wraps db. migrate may be nil when the schema is managed elsewhere.
func New(db *sql.DB, d Dialect, migrate func(*sql.DB) error) *Store {
	return &Store{db: db, dialect: d, migrate: migrate}
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) ApplyMigrations() error {
	if s.migrate == nil {
		return nil
	}
	return s.migrate(s.db)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store. The
// transaction is rolled back by database/sql if ctx is cancelled first.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx, c: conn{q: tx, d: s.dialect}}, nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // no-op after a successful commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) c() conn { return conn{q: s.db, d: s.dialect} }

func (s *Store) Users() store.Users               { return &usersRepo{s.c()} }
func (s *Store) Accounts() store.Accounts         { return &accountsRepo{s.c()} }
func (s *Store) Members() store.Members           { return &membersRepo{s.c()} }
func (s *Store) Invitations() store.Invitations   { return &invitationsRepo{s.c()} }
func (s *Store) InviteTokens() store.InviteTokens { return &inviteTokensRepo{s.c()} }

type txStore struct {
	tx *sql.Tx
	c  conn
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // the outer DB stays open

// Ping is a no-op for transactions. The connection is already established
// when the transaction is created, so we just return nil.
func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx

// Tx is not supported on a transaction; nesting would need savepoints.
func (t *txStore) Tx(context.Context) (store.Tx, error) {
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(context.Context, func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users               { return &usersRepo{t.c} }
func (t *txStore) Accounts() store.Accounts         { return &accountsRepo{t.c} }
func (t *txStore) Members() store.Members           { return &membersRepo{t.c} }
func (t *txStore) Invitations() store.Invitations   { return &invitationsRepo{t.c} }
func (t *txStore) InviteTokens() store.InviteTokens { return &inviteTokensRepo{t.c} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
