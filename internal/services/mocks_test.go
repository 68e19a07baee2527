package services_test

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"shoply/internal/gateway"
	"shoply/internal/models/db_models"
	"shoply/internal/repositories"
	"shoply/internal/services"
)

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) InsertPayment(ctx context.Context, payment *db_models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindPaymentByID(ctx context.Context, id uuid.UUID) (*db_models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentWithRefunds(ctx context.Context, id uuid.UUID) (*db_models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentByProviderID(ctx context.Context, providerPaymentID string) (*db_models.Payment, error) {
	args := m.Called(ctx, providerPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindPaymentsByPurchase(ctx context.Context, purchaseID uuid.UUID) ([]db_models.Payment, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db_models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindOldestPendingPayment(ctx context.Context, purchaseID uuid.UUID, provider db_models.PaymentProvider) (*db_models.Payment, error) {
	args := m.Called(ctx, purchaseID, provider)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPaymentsByUser(ctx context.Context, userID uuid.UUID, filter repositories.PaymentFilter) ([]db_models.Payment, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db_models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ListPayments(ctx context.Context, filter repositories.PaymentFilter) ([]db_models.Payment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db_models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ApplyPaymentStatus(ctx context.Context, id uuid.UUID, status db_models.PaymentStatus, fields repositories.PaymentStatusFields) (*db_models.Payment, error) {
	args := m.Called(ctx, id, status, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.Payment), args.Error(1)
}

func (m *MockPaymentRepository) InsertRefund(ctx context.Context, refund *db_models.Refund) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *MockPaymentRepository) FindRefundByID(ctx context.Context, id uuid.UUID) (*db_models.Refund, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.Refund), args.Error(1)
}

func (m *MockPaymentRepository) FindRefundByProviderID(ctx context.Context, providerRefundID string) (*db_models.Refund, error) {
	args := m.Called(ctx, providerRefundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.Refund), args.Error(1)
}

func (m *MockPaymentRepository) ListRefundsByPayment(ctx context.Context, paymentID uuid.UUID) ([]db_models.Refund, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db_models.Refund), args.Error(1)
}

func (m *MockPaymentRepository) ListRefunds(ctx context.Context, filter repositories.RefundFilter) ([]db_models.Refund, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db_models.Refund), args.Error(1)
}

func (m *MockPaymentRepository) ApplyRefundStatus(ctx context.Context, id uuid.UUID, status db_models.RefundStatus, fields repositories.RefundStatusFields) (*db_models.Refund, error) {
	args := m.Called(ctx, id, status, fields)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.Refund), args.Error(1)
}

func (m *MockPaymentRepository) RefundableAmount(ctx context.Context, paymentID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, paymentID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentRepository) Summary(ctx context.Context, from, to *time.Time) (*repositories.PaymentSummary, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.PaymentSummary), args.Error(1)
}

type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) CreatePurchases(ctx context.Context, purchases []db_models.Purchase) error {
	args := m.Called(ctx, purchases)
	return args.Error(0)
}

func (m *MockPurchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*db_models.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*db_models.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) ListByCustomer(ctx context.Context, customerID uuid.UUID, page, pageSize int) ([]db_models.Purchase, error) {
	args := m.Called(ctx, customerID, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db_models.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) ListAll(ctx context.Context, status *db_models.OrderStatus, page, pageSize int) ([]db_models.Purchase, error) {
	args := m.Called(ctx, status, page, pageSize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]db_models.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) UpdatePurchase(ctx context.Context, purchase *db_models.Purchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

type MockGateway struct {
	mock.Mock
	name db_models.PaymentProvider
}

func (m *MockGateway) Name() db_models.PaymentProvider { return m.name }

func (m *MockGateway) CreateIntent(ctx context.Context, req gateway.IntentRequest) (*gateway.IntentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.IntentResult), args.Error(1)
}

func (m *MockGateway) CaptureOrConfirm(ctx context.Context, providerPaymentID string) (*gateway.CaptureResult, error) {
	args := m.Called(ctx, providerPaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CaptureResult), args.Error(1)
}

func (m *MockGateway) CreateRefund(ctx context.Context, req gateway.RefundRequest) (*gateway.RefundResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.RefundResult), args.Error(1)
}

func (m *MockGateway) VerifyWebhook(ctx context.Context, body []byte, headers http.Header) (*gateway.Event, error) {
	args := m.Called(ctx, body, headers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Event), args.Error(1)
}

// stubNotifier records calls without asserting on them; notifications are
// best-effort side channels.
type stubNotifier struct {
	paymentEvents []db_models.PaymentStatus
	refundEvents  []db_models.RefundStatus
}

func (s *stubNotifier) NotifyOrderPlaced(ctx context.Context, userID uuid.UUID, purchases []db_models.Purchase) {
}

func (s *stubNotifier) NotifyOrderStatusChanged(ctx context.Context, purchase *db_models.Purchase) {}

func (s *stubNotifier) NotifyPaymentResult(ctx context.Context, payment *db_models.Payment) {
	s.paymentEvents = append(s.paymentEvents, payment.Status)
}

func (s *stubNotifier) NotifyRefundResult(ctx context.Context, payment *db_models.Payment, refund *db_models.Refund) {
	s.refundEvents = append(s.refundEvents, refund.Status)
}

func (s *stubNotifier) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]services.Notification, error) {
	return nil, nil
}

func (s *stubNotifier) MarkRead(ctx context.Context, userID uuid.UUID, notificationID string) error {
	return nil
}
