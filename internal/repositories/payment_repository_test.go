package repositories_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shoply/internal/models/db_models"
	"shoply/internal/repositories"
)

// newPaymentRepo backs the repository with an in-memory sqlite database.
// A single connection keeps every query on the same in-memory instance.
func newPaymentRepo(t *testing.T) repositories.PaymentRepositoryInterface {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&db_models.User{}, &db_models.Item{}, &db_models.CartItem{},
		&db_models.Purchase{}, &db_models.Payment{}, &db_models.Refund{}))

	return repositories.NewPaymentRepository(db)
}

func seedSucceededPayment(t *testing.T, ctx context.Context, repo repositories.PaymentRepositoryInterface, amount string) *db_models.Payment {
	t.Helper()

	payment := &db_models.Payment{
		PurchaseID: uuid.New(),
		UserID:     uuid.New(),
		Amount:     decimal.RequireFromString(amount),
		Currency:   "usd",
		Status:     db_models.PaymentStatusSucceeded,
		Provider:   db_models.ProviderStripe,
	}
	require.NoError(t, repo.InsertPayment(ctx, payment))
	return payment
}

func applyRefund(t *testing.T, ctx context.Context, repo repositories.PaymentRepositoryInterface, paymentID uuid.UUID, amount string, status db_models.RefundStatus) *db_models.Refund {
	t.Helper()

	refund := &db_models.Refund{
		PaymentID: paymentID,
		Amount:    decimal.RequireFromString(amount),
		Currency:  "usd",
		Status:    db_models.RefundStatusPending,
	}
	require.NoError(t, repo.InsertRefund(ctx, refund))

	updated, err := repo.ApplyRefundStatus(ctx, refund.ID, status, repositories.RefundStatusFields{})
	require.NoError(t, err)
	require.NotNil(t, updated)
	return updated
}

func requireRefundable(t *testing.T, ctx context.Context, repo repositories.PaymentRepositoryInterface, paymentID uuid.UUID, want string) {
	t.Helper()

	refundable, err := repo.RefundableAmount(ctx, paymentID)
	require.NoError(t, err)
	assert.True(t, refundable.Equal(decimal.RequireFromString(want)),
		"refundable = %s, want %s", refundable, want)
}

func TestRefundAggregateAccounting(t *testing.T) {
	ctx := context.Background()

	t.Run("partial then full refund walks the aggregate", func(t *testing.T) {
		repo := newPaymentRepo(t)
		payment := seedSucceededPayment(t, ctx, repo, "100.00")

		requireRefundable(t, ctx, repo, payment.ID, "100.00")

		first := applyRefund(t, ctx, repo, payment.ID, "30.00", db_models.RefundStatusSucceeded)
		assert.Equal(t, db_models.RefundStatusSucceeded, first.Status)
		assert.NotNil(t, first.SucceededAt)

		reloaded, err := repo.FindPaymentByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, db_models.PaymentStatusPartiallyRefunded, reloaded.Status)
		requireRefundable(t, ctx, repo, payment.ID, "70.00")

		applyRefund(t, ctx, repo, payment.ID, "70.00", db_models.RefundStatusSucceeded)

		reloaded, err = repo.FindPaymentByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, db_models.PaymentStatusRefunded, reloaded.Status)
		requireRefundable(t, ctx, repo, payment.ID, "0")
	})

	t.Run("replaying a succeeded refund changes nothing", func(t *testing.T) {
		repo := newPaymentRepo(t)
		payment := seedSucceededPayment(t, ctx, repo, "50.00")

		refund := applyRefund(t, ctx, repo, payment.ID, "50.00", db_models.RefundStatusSucceeded)

		again, err := repo.ApplyRefundStatus(ctx, refund.ID,
			db_models.RefundStatusSucceeded, repositories.RefundStatusFields{})
		require.NoError(t, err)
		assert.Equal(t, db_models.RefundStatusSucceeded, again.Status)

		reloaded, err := repo.FindPaymentByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, db_models.PaymentStatusRefunded, reloaded.Status)
		requireRefundable(t, ctx, repo, payment.ID, "0")
	})

	t.Run("failed refunds never count against the balance", func(t *testing.T) {
		repo := newPaymentRepo(t)
		payment := seedSucceededPayment(t, ctx, repo, "80.00")

		failed := applyRefund(t, ctx, repo, payment.ID, "20.00", db_models.RefundStatusFailed)
		assert.Equal(t, db_models.RefundStatusFailed, failed.Status)
		assert.NotNil(t, failed.FailedAt)

		reloaded, err := repo.FindPaymentByID(ctx, payment.ID)
		require.NoError(t, err)
		assert.Equal(t, db_models.PaymentStatusSucceeded, reloaded.Status)
		requireRefundable(t, ctx, repo, payment.ID, "80.00")
	})

	t.Run("payments that never succeeded have nothing to refund", func(t *testing.T) {
		repo := newPaymentRepo(t)

		payment := &db_models.Payment{
			PurchaseID: uuid.New(),
			UserID:     uuid.New(),
			Amount:     decimal.RequireFromString("40.00"),
			Currency:   "usd",
			Status:     db_models.PaymentStatusPending,
			Provider:   db_models.ProviderStripe,
		}
		require.NoError(t, repo.InsertPayment(ctx, payment))

		requireRefundable(t, ctx, repo, payment.ID, "0")
	})
}
