package database

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales_backend/internal/config"
)

// fakeTx records how the transaction was closed. Unused pgx.Tx methods panic
// through the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	commits   int
	rollbacks int
	commitErr error
	closed    bool
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.commits++
	f.closed = true
	return f.commitErr
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	if f.closed {
		return pgx.ErrTxClosed
	}
	f.rollbacks++
	f.closed = true
	return nil
}

type fakeBeginner struct {
	tx  *fakeTx
	err error
}

func (b *fakeBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.tx, nil
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	tx := &fakeTx{}
	m := NewTxManager(&fakeBeginner{tx: tx})

	err := m.WithTx(context.Background(), func(pgx.Tx) error { return nil })
	require.NoError(t, err)
	assert.Equal(t, 1, tx.commits)
	assert.Equal(t, 0, tx.rollbacks)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	tx := &fakeTx{}
	m := NewTxManager(&fakeBeginner{tx: tx})
	boom := errors.New("boom")

	err := m.WithTx(context.Background(), func(pgx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, tx.commits)
	assert.Equal(t, 1, tx.rollbacks)
}

func TestWithTx_RollsBackAndRepanics(t *testing.T) {
	tx := &fakeTx{}
	m := NewTxManager(&fakeBeginner{tx: tx})

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = m.WithTx(context.Background(), func(pgx.Tx) error { panic("kaboom") })
	})
	assert.Equal(t, 1, tx.rollbacks)
	assert.Equal(t, 0, tx.commits)
}

func TestWithTx_CommitFailureIsReported(t *testing.T) {
	tx := &fakeTx{commitErr: errors.New("serialization failure")}
	m := NewTxManager(&fakeBeginner{tx: tx})

	err := m.WithTx(context.Background(), func(pgx.Tx) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to commit transaction")
	assert.Equal(t, 0, tx.rollbacks)
}

func TestWithTx_BeginFailure(t *testing.T) {
	m := NewTxManager(&fakeBeginner{err: errors.New("pool closed")})

	called := false
	err := m.WithTx(context.Background(), func(pgx.Tx) error { called = true; return nil })
	require.Error(t, err)
	assert.False(t, called)
}

func TestDSN_EscapesCredentials(t *testing.T) {
	dsn := DSN(config.DBConfig{Host: "db", Port: "5432", User: "sales", Password: "p@ss/word", Database: "ventas"})
	assert.Equal(t, "postgres://sales:p%40ss%2Fword@db:5432/ventas?sslmode=disable", dsn)
}
