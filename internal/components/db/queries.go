package db

import (
	"context"
	"database/sql"
)

type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type Slot struct {
	Key       string
	Value     string
	UpdatedAt int64
}

const getSlot = `select key, value, updated_at from slot where key = ?`

// GetSlot returns sql.ErrNoRows when nothing has been stored under key.
func (q *Queries) GetSlot(ctx context.Context, key string) (Slot, error) {
	row := q.db.QueryRowContext(ctx, getSlot, key)
	var i Slot
	err := row.Scan(&i.Key, &i.Value, &i.UpdatedAt)
	return i, err
}

const putSlot = `insert into slot(key, value, updated_at) values (?, ?, ?)
on conflict (key) do update set value = excluded.value, updated_at = excluded.updated_at`

type PutSlotParams struct {
	Key       string
	Value     string
	UpdatedAt int64
}

func (q *Queries) PutSlot(ctx context.Context, arg PutSlotParams) error {
	_, err := q.db.ExecContext(ctx, putSlot, arg.Key, arg.Value, arg.UpdatedAt)
	return err
}

const deleteSlot = `delete from slot where key = ?`

func (q *Queries) DeleteSlot(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteSlot, key)
	return err
}
