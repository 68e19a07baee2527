package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"shoply/internal/models/db_models"
)

type PaymentFilter struct {
	Status   *db_models.PaymentStatus
	Provider *db_models.PaymentProvider
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

type RefundFilter struct {
	Status   *db_models.RefundStatus
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// PaymentStatusFields are the only payment columns a status transition may
// touch besides status itself and the stamped timestamps.
type PaymentStatusFields struct {
	ProviderPaymentID *string
	ProviderChargeID  *string
	FailureCode       *string
	FailureMessage    *string
}

type RefundStatusFields struct {
	ProviderRefundID *string
	FailureCode      *string
	FailureMessage   *string
}

type PaymentSummary struct {
	TotalPayments      int64           `json:"total_payments"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	SuccessfulPayments int64           `json:"successful_payments"`
	FailedPayments     int64           `json:"failed_payments"`
	PendingPayments    int64           `json:"pending_payments"`
	TotalRefunds       int64           `json:"total_refunds"`
	TotalRefundAmount  decimal.Decimal `json:"total_refund_amount"`
}

type PaymentRepositoryInterface interface {
	InsertPayment(ctx context.Context, payment *db_models.Payment) error
	FindPaymentByID(ctx context.Context, id uuid.UUID) (*db_models.Payment, error)
	FindPaymentWithRefunds(ctx context.Context, id uuid.UUID) (*db_models.Payment, error)
	FindPaymentByProviderID(ctx context.Context, providerPaymentID string) (*db_models.Payment, error)
	FindPaymentsByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]db_models.Payment, error)
	FindOldestPendingPayment(ctx context.Context, purchaseID uuid.UUID, provider db_models.PaymentProvider) (*db_models.Payment, error)
	ListPaymentsByUser(ctx context.Context, userID uuid.UUID, filter PaymentFilter) ([]db_models.Payment, error)
	ListPayments(ctx context.Context, filter PaymentFilter) ([]db_models.Payment, error)
	ApplyPaymentStatus(ctx context.Context, id uuid.UUID, status db_models.PaymentStatus, fields PaymentStatusFields) (*db_models.Payment, error)

	InsertRefund(ctx context.Context, refund *db_models.Refund) error
	FindRefundByID(ctx context.Context, id uuid.UUID) (*db_models.Refund, error)
	FindRefundByProviderID(ctx context.Context, providerRefundID string) (*db_models.Refund, error)
	ListRefundsByPayment(ctx context.Context, paymentID uuid.UUID) ([]db_models.Refund, error)
	ListRefunds(ctx context.Context, filter RefundFilter) ([]db_models.Refund, error)
	ApplyRefundStatus(ctx context.Context, id uuid.UUID, status db_models.RefundStatus, fields RefundStatusFields) (*db_models.Refund, error)

	RefundableAmount(ctx context.Context, paymentID uuid.UUID) (decimal.Decimal, error)
	Summary(ctx context.Context, from, to *time.Time) (*PaymentSummary, error)
}

func NewPaymentRepository(db *gorm.DB) PaymentRepositoryInterface {
	return &paymentRepository{db: db}
}

type paymentRepository struct {
	db *gorm.DB
}

func (r *paymentRepository) InsertPayment(ctx context.Context, payment *db_models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) FindPaymentByID(ctx context.Context, id uuid.UUID) (*db_models.Payment, error) {
	var payment db_models.Payment
	err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindPaymentWithRefunds(ctx context.Context, id uuid.UUID) (*db_models.Payment, error) {
	var payment db_models.Payment
	err := r.db.WithContext(ctx).Preload("Refunds").First(&payment, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindPaymentByProviderID(ctx context.Context, providerPaymentID string) (*db_models.Payment, error) {
	var payment db_models.Payment
	err := r.db.WithContext(ctx).
		First(&payment, "provider_payment_id = ?", providerPaymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindPaymentsByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]db_models.Payment, error) {
	var payments []db_models.Payment
	err := r.db.WithContext(ctx).
		Where("purchase_id = ?", purchaseID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// FindOldestPendingPayment backs the webhook correlation fallback for
// providers that only carry the purchase id in event metadata.
func (r *paymentRepository) FindOldestPendingPayment(ctx context.Context, purchaseID uuid.UUID, provider db_models.PaymentProvider) (*db_models.Payment, error) {
	var payment db_models.Payment
	err := r.db.WithContext(ctx).
		Where("purchase_id = ? AND provider = ? AND status = ?",
			purchaseID, provider, db_models.PaymentStatusPending).
		Order("created_at ASC").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func paymentFilterScope(filter PaymentFilter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.Status != nil {
			db = db.Where("status = ?", *filter.Status)
		}
		if filter.Provider != nil {
			db = db.Where("provider = ?", *filter.Provider)
		}
		if filter.From != nil {
			db = db.Where("created_at >= ?", filter.From.Unix())
		}
		if filter.To != nil {
			db = db.Where("created_at <= ?", filter.To.Unix())
		}
		page, pageSize := filter.Page, filter.PageSize
		if page < 1 {
			page = 1
		}
		if pageSize < 1 || pageSize > 100 {
			pageSize = 100
		}
		return db.Offset((page - 1) * pageSize).Limit(pageSize)
	}
}

func (r *paymentRepository) ListPaymentsByUser(ctx context.Context, userID uuid.UUID, filter PaymentFilter) ([]db_models.Payment, error) {
	var payments []db_models.Payment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Scopes(paymentFilterScope(filter)).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) ListPayments(ctx context.Context, filter PaymentFilter) ([]db_models.Payment, error) {
	var payments []db_models.Payment
	err := r.db.WithContext(ctx).
		Scopes(paymentFilterScope(filter)).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// ApplyPaymentStatus is the only write path for payment status. The row is
// locked for the duration of the transaction so concurrent webhook
// deliveries serialize instead of double-applying.
func (r *paymentRepository) ApplyPaymentStatus(ctx context.Context, id uuid.UUID, status db_models.PaymentStatus, fields PaymentStatusFields) (*db_models.Payment, error) {
	var payment db_models.Payment

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&payment, "id = ?", id).Error; err != nil {
			return err
		}

		updates := map[string]any{"status": status}
		if fields.ProviderPaymentID != nil {
			updates["provider_payment_id"] = *fields.ProviderPaymentID
		}
		if fields.ProviderChargeID != nil {
			updates["provider_charge_id"] = *fields.ProviderChargeID
		}
		if fields.FailureCode != nil {
			updates["failure_code"] = *fields.FailureCode
		}
		if fields.FailureMessage != nil {
			updates["failure_message"] = *fields.FailureMessage
		}

		now := time.Now().Unix()
		switch status {
		case db_models.PaymentStatusSucceeded:
			updates["succeeded_at"] = now
		case db_models.PaymentStatusFailed, db_models.PaymentStatusCancelled:
			updates["failed_at"] = now
		}

		if err := tx.Model(&payment).Updates(updates).Error; err != nil {
			return err
		}
		return tx.First(&payment, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) InsertRefund(ctx context.Context, refund *db_models.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}

func (r *paymentRepository) FindRefundByID(ctx context.Context, id uuid.UUID) (*db_models.Refund, error) {
	var refund db_models.Refund
	err := r.db.WithContext(ctx).First(&refund, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &refund, nil
}

func (r *paymentRepository) FindRefundByProviderID(ctx context.Context, providerRefundID string) (*db_models.Refund, error) {
	var refund db_models.Refund
	err := r.db.WithContext(ctx).
		First(&refund, "provider_refund_id = ?", providerRefundID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &refund, nil
}

func (r *paymentRepository) ListRefundsByPayment(ctx context.Context, paymentID uuid.UUID) ([]db_models.Refund, error) {
	var refunds []db_models.Refund
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at ASC").
		Find(&refunds).Error
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

func (r *paymentRepository) ListRefunds(ctx context.Context, filter RefundFilter) ([]db_models.Refund, error) {
	var refunds []db_models.Refund
	db := r.db.WithContext(ctx)
	if filter.Status != nil {
		db = db.Where("status = ?", *filter.Status)
	}
	if filter.From != nil {
		db = db.Where("created_at >= ?", filter.From.Unix())
	}
	if filter.To != nil {
		db = db.Where("created_at <= ?", filter.To.Unix())
	}
	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 100
	}
	err := db.Offset((page - 1) * pageSize).Limit(pageSize).
		Order("created_at DESC").
		Find(&refunds).Error
	if err != nil {
		return nil, err
	}
	return refunds, nil
}

// ApplyRefundStatus transitions a refund and, when it reaches succeeded,
// recomputes the owning payment's refund aggregate in the same transaction.
// The recompute is idempotent: it derives refunded/partially_refunded from
// the current sum of succeeded refunds, never from deltas.
func (r *paymentRepository) ApplyRefundStatus(ctx context.Context, id uuid.UUID, status db_models.RefundStatus, fields RefundStatusFields) (*db_models.Refund, error) {
	var refund db_models.Refund

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&refund, "id = ?", id).Error; err != nil {
			return err
		}

		updates := map[string]any{"status": status}
		if fields.ProviderRefundID != nil {
			updates["provider_refund_id"] = *fields.ProviderRefundID
		}
		if fields.FailureCode != nil {
			updates["failure_code"] = *fields.FailureCode
		}
		if fields.FailureMessage != nil {
			updates["failure_message"] = *fields.FailureMessage
		}

		now := time.Now().Unix()
		switch status {
		case db_models.RefundStatusSucceeded:
			updates["succeeded_at"] = now
		case db_models.RefundStatusFailed, db_models.RefundStatusCancelled:
			updates["failed_at"] = now
		}

		if err := tx.Model(&refund).Updates(updates).Error; err != nil {
			return err
		}

		if status == db_models.RefundStatusSucceeded {
			if err := recomputeRefundAggregate(tx, refund.PaymentID); err != nil {
				return err
			}
		}

		return tx.First(&refund, "id = ?", id).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &refund, nil
}

func recomputeRefundAggregate(tx *gorm.DB, paymentID uuid.UUID) error {
	var payment db_models.Payment
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&payment, "id = ?", paymentID).Error; err != nil {
		return err
	}

	refunded, err := sumSucceededRefunds(tx, paymentID)
	if err != nil {
		return err
	}

	var next db_models.PaymentStatus
	switch {
	case refunded.GreaterThanOrEqual(payment.Amount):
		next = db_models.PaymentStatusRefunded
	case refunded.IsPositive():
		next = db_models.PaymentStatusPartiallyRefunded
	default:
		return nil
	}

	if payment.Status == next {
		return nil
	}
	return tx.Model(&payment).Update("status", next).Error
}

func sumSucceededRefunds(tx *gorm.DB, paymentID uuid.UUID) (decimal.Decimal, error) {
	var refunded decimal.Decimal
	err := tx.Model(&db_models.Refund{}).
		Where("payment_id = ? AND status = ?", paymentID, db_models.RefundStatusSucceeded).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&refunded).Error
	return refunded, err
}

// RefundableAmount recomputes the balance fresh on every call: payment
// amount minus the sum of succeeded refund amounts. Payments that never
// succeeded have nothing to refund.
func (r *paymentRepository) RefundableAmount(ctx context.Context, paymentID uuid.UUID) (decimal.Decimal, error) {
	payment, err := r.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return decimal.Zero, err
	}
	if payment == nil {
		return decimal.Zero, nil
	}
	switch payment.Status {
	case db_models.PaymentStatusSucceeded,
		db_models.PaymentStatusPartiallyRefunded,
		db_models.PaymentStatusRefunded:
	default:
		return decimal.Zero, nil
	}

	refunded, err := sumSucceededRefunds(r.db.WithContext(ctx), paymentID)
	if err != nil {
		return decimal.Zero, err
	}

	remaining := payment.Amount.Sub(refunded)
	if remaining.IsNegative() {
		return decimal.Zero, nil
	}
	return remaining, nil
}

func (r *paymentRepository) Summary(ctx context.Context, from, to *time.Time) (*PaymentSummary, error) {
	summary := &PaymentSummary{
		TotalAmount:       decimal.Zero,
		TotalRefundAmount: decimal.Zero,
	}

	payments := r.db.WithContext(ctx).Model(&db_models.Payment{})
	refunds := r.db.WithContext(ctx).Model(&db_models.Refund{})
	if from != nil {
		payments = payments.Where("created_at >= ?", from.Unix())
		refunds = refunds.Where("created_at >= ?", from.Unix())
	}
	if to != nil {
		payments = payments.Where("created_at <= ?", to.Unix())
		refunds = refunds.Where("created_at <= ?", to.Unix())
	}

	if err := payments.Session(&gorm.Session{}).Count(&summary.TotalPayments).Error; err != nil {
		return nil, err
	}
	countByStatus := func(status db_models.PaymentStatus, dest *int64) error {
		return payments.Session(&gorm.Session{}).Where("status = ?", status).Count(dest).Error
	}
	if err := countByStatus(db_models.PaymentStatusSucceeded, &summary.SuccessfulPayments); err != nil {
		return nil, err
	}
	if err := countByStatus(db_models.PaymentStatusFailed, &summary.FailedPayments); err != nil {
		return nil, err
	}
	if err := countByStatus(db_models.PaymentStatusPending, &summary.PendingPayments); err != nil {
		return nil, err
	}
	if err := payments.Session(&gorm.Session{}).
		Where("status IN ?", []db_models.PaymentStatus{
			db_models.PaymentStatusSucceeded,
			db_models.PaymentStatusPartiallyRefunded,
			db_models.PaymentStatusRefunded,
		}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&summary.TotalAmount).Error; err != nil {
		return nil, err
	}

	if err := refunds.Session(&gorm.Session{}).Count(&summary.TotalRefunds).Error; err != nil {
		return nil, err
	}
	if err := refunds.Session(&gorm.Session{}).
		Where("status = ?", db_models.RefundStatusSucceeded).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&summary.TotalRefundAmount).Error; err != nil {
		return nil, err
	}

	return summary, nil
}
