package repo

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveRetryReturnsExistingReservation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM wallets WHERE user_id=\$1 FOR UPDATE`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("w1"))
	// external_ref já reservado: devolve a reserva existente sem olhar o saldo,
	// mesmo que o valor pedido não caiba mais no saldo atual
	mock.ExpectQuery(`SELECT id FROM wallet_reservations WHERE wallet_id=\$1 AND external_ref=\$2`).
		WithArgs("w1", "bet-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("res-1"))
	mock.ExpectRollback()

	p := NewPostgres(db)
	id, err := p.Reserve(context.Background(), "u1", 999_999, "bet-1")
	require.NoError(t, err)
	assert.Equal(t, "res-1", id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveInsufficientFunds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM wallets WHERE user_id=\$1 FOR UPDATE`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("w1"))
	mock.ExpectQuery(`SELECT id FROM wallet_reservations WHERE wallet_id=\$1 AND external_ref=\$2`).
		WithArgs("w1", "bet-2").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT balance_cents FROM wallets WHERE id=\$1`).
		WithArgs("w1").
		WillReturnRows(sqlmock.NewRows([]string{"balance_cents"}).AddRow(int64(500)))
	mock.ExpectRollback()

	p := NewPostgres(db)
	_, err = p.Reserve(context.Background(), "u1", 1000, "bet-2")
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}
