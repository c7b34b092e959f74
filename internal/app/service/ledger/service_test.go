package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lintasnet/paygate/internal/models"
	"github.com/lintasnet/paygate/pkg/config"
	"github.com/lintasnet/paygate/pkg/types"
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: db, PreferSimpleProtocol: true}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	cfg := &config.Config{Gateway: config.GatewayDefaults{TransactionTTL: 24 * time.Hour}}
	return New(cfg, zap.NewNop().Sugar(), gdb), mock
}

func TestValidatePayable(t *testing.T) {
	svc, mock := newMockService(t)
	ctx := context.Background()

	cols := []string{"id", "number", "customer_name", "amount", "status"}

	mock.ExpectQuery(`SELECT .* FROM "invoice" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("inv-1", "1001", "Budi", 150000, "unpaid"))
	inv, err := svc.ValidatePayable(ctx, "inv-1")
	require.NoError(t, err)
	require.Equal(t, "1001", inv.Number)

	mock.ExpectQuery(`SELECT .* FROM "invoice" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("inv-2", "1002", "Sari", 150000, "paid"))
	_, err = svc.ValidatePayable(ctx, "inv-2")
	require.ErrorIs(t, err, ErrInvoiceNotPayable)

	mock.ExpectQuery(`SELECT .* FROM "invoice" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(cols))
	_, err = svc.ValidatePayable(ctx, "inv-3")
	require.ErrorIs(t, err, ErrInvoiceNotPayable)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindPending(t *testing.T) {
	svc, mock := newMockService(t)
	ctx := context.Background()

	cols := []string{"id", "invoice_id", "gateway", "order_id", "status", "amount", "expires_at"}
	mock.ExpectQuery(`SELECT .* FROM "payment_transaction" WHERE invoice_id = \$1 AND status = \$2 AND expires_at > \$3`).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("tx-1", "inv-1", "tripay", "INV-1001", "pending", 150000, time.Now().Add(time.Hour)))

	tx, err := svc.FindPending(ctx, "inv-1")
	require.NoError(t, err)
	require.NotNil(t, tx)
	require.Equal(t, "tx-1", tx.ID)
	require.Equal(t, models.TransactionStatusPending, tx.Status)

	// no open attempt is not an error
	mock.ExpectQuery(`SELECT .* FROM "payment_transaction" WHERE invoice_id = \$1 AND status = \$2 AND expires_at > \$3`).
		WillReturnRows(sqlmock.NewRows(cols))
	tx, err = svc.FindPending(ctx, "inv-1")
	require.NoError(t, err)
	require.Nil(t, tx)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettlePaidAppliesOnce(t *testing.T) {
	svc, mock := newMockService(t)
	ctx := context.Background()
	paidAt := time.Now()

	// first delivery flips the transaction and the invoice
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payment_transaction" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "invoice" SET .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := svc.SettlePaid(ctx, "tx-1", "inv-1", "ref-1", paidAt)
	require.NoError(t, err)
	require.True(t, applied)

	// redelivery matches zero rows and never touches the invoice
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payment_transaction" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err = svc.SettlePaid(ctx, "tx-1", "inv-1", "ref-1", paidAt)
	require.NoError(t, err)
	require.False(t, applied)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailedIdempotent(t *testing.T) {
	svc, mock := newMockService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payment_transaction" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	applied, err := svc.MarkFailed(ctx, "tx-1")
	require.NoError(t, err)
	require.True(t, applied)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payment_transaction" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err = svc.MarkFailed(ctx, "tx-1")
	require.NoError(t, err)
	require.False(t, applied)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRejectsNonPending(t *testing.T) {
	svc, mock := newMockService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payment_transaction" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := svc.Cancel(ctx, "tx-1", "changed my mind")
	require.ErrorIs(t, err, ErrInvalidStateTransition)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelRevertsInvoiceMarkers(t *testing.T) {
	svc, mock := newMockService(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "payment_transaction" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .* FROM "payment_transaction" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "invoice_id", "status"}).
			AddRow("tx-1", "inv-1", "cancelled"))
	mock.ExpectExec(`UPDATE "invoice" SET .* WHERE id = \$\d+ AND status != \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Cancel(ctx, "tx-1", "changed my mind"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRejectsSecondPending(t *testing.T) {
	// The partial unique index allows one pending row per invoice; the
	// duplicate-key error surfaces as ErrPendingExists.
	svc, mock := newMockService(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "payment_transaction"`).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	inv := &models.Invoice{ID: "inv-1", Number: "1001", Amount: 150000, Status: models.InvoiceStatusUnpaid}
	req := &types.PaymentRequest{InvoiceID: "inv-1", InvoiceNumber: "1001", Amount: 150000}
	res := &types.PaymentResult{Gateway: types.PaymentProviderTripay, OrderID: "INV-1001", Token: "T0001-REF"}

	_, err := svc.Create(context.Background(), inv, req, res)
	require.ErrorIs(t, err, ErrPendingExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectQuery(`SELECT .* FROM "payment_transaction" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Get(context.Background(), "missing", "")
	require.ErrorIs(t, err, ErrTransactionNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
