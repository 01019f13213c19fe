package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
)

func TestWithinTxCommitsAndBindsConn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	d := Wrap(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE documents").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err = d.WithinTx(context.Background(), func(ctx context.Context) error {
		if d.Conn(ctx) == d.DB {
			t.Fatalf("expected transaction to be bound to ctx")
		}
		_, err := d.Conn(ctx).ExecContext(ctx, "UPDATE documents SET signed = TRUE")
		return err
	})
	if err != nil {
		t.Fatalf("WithinTx() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestWithinTxRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	d := Wrap(db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = d.WithinTx(context.Background(), func(ctx context.Context) error {
		return d.WithinTx(ctx, func(context.Context) error { return boom })
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestConnWithoutTxReturnsPool(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer db.Close()
	d := Wrap(db, zap.NewNop())

	if d.Conn(context.Background()) != d.DB {
		t.Fatalf("expected pool outside a transaction")
	}
}
