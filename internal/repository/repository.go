package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx so repositories run inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Stores is the set of repositories bound to one unit of work.
type Stores struct {
	Bugs      BugRepository
	Relations RelationRepository
	Comments  CommentRepository
	History   TicketHistoryRepository
}

// Transactor runs fn inside a single transaction. Returning an error from fn rolls back every
// change made through the supplied Stores; returning nil commits them together.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}

// NewStores binds all repositories to db.
func NewStores(db DBTX) Stores {
	return Stores{
		Bugs:      NewBugRepository(db),
		Relations: NewRelationRepository(db),
		Comments:  NewCommentRepository(db),
		History:   NewTicketHistoryRepository(db),
	}
}

type pgTransactor struct {
	pool *pgxpool.Pool
}

// NewPgTransactor returns a Transactor backed by pgx transactions on pool.
func NewPgTransactor(pool *pgxpool.Pool) Transactor {
	return &pgTransactor{pool: pool}
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error {
	tx, err := t.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	// no-op once committed
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if err := fn(ctx, NewStores(tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func notFoundOr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
