package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shoply/internal/gateway"
	"shoply/internal/models/db_models"
	"shoply/internal/models/request_models"
	"shoply/internal/models/response_models"
	"shoply/internal/repositories"
	"shoply/pkg/utils"
)

type PaymentServiceInterface interface {
	CreateIntent(ctx context.Context, userID uuid.UUID, request request_models.CreatePaymentRequest) (*response_models.PaymentIntentResponse, error)
	ConfirmPayment(ctx context.Context, userID uuid.UUID, paymentID uuid.UUID) (*response_models.PaymentResponse, error)
	GetPayment(ctx context.Context, userID uuid.UUID, isAdmin bool, paymentID uuid.UUID) (*response_models.PaymentDetailResponse, error)
	ListMyPayments(ctx context.Context, userID uuid.UUID, filter repositories.PaymentFilter) ([]response_models.PaymentResponse, error)
	ListAllPayments(ctx context.Context, filter repositories.PaymentFilter) ([]response_models.PaymentResponse, error)
	ListPaymentsForPurchase(ctx context.Context, userID uuid.UUID, isAdmin bool, purchaseID uuid.UUID) ([]response_models.PaymentResponse, error)
	CreateRefund(ctx context.Context, adminID uuid.UUID, paymentID uuid.UUID, request request_models.CreateRefundRequest) (*response_models.RefundResponse, error)
	GetRefund(ctx context.Context, refundID uuid.UUID) (*response_models.RefundResponse, error)
	ListRefunds(ctx context.Context, filter repositories.RefundFilter) ([]response_models.RefundResponse, error)
	Summary(ctx context.Context, from, to *time.Time) (*repositories.PaymentSummary, error)
	ApplyProviderEvent(ctx context.Context, provider db_models.PaymentProvider, event *gateway.Event) error
}

type PaymentService struct {
	paymentRepo  repositories.PaymentRepositoryInterface
	purchaseRepo repositories.PurchaseRepositoryInterface
	gateways     map[db_models.PaymentProvider]gateway.Gateway
	notifier     NotificationServiceInterface
	logger       *zap.Logger
}

func NewPaymentService(
	paymentRepo repositories.PaymentRepositoryInterface,
	purchaseRepo repositories.PurchaseRepositoryInterface,
	gateways []gateway.Gateway,
	notifier NotificationServiceInterface,
	logger *zap.Logger,
) PaymentServiceInterface {
	byName := make(map[db_models.PaymentProvider]gateway.Gateway, len(gateways))
	for _, g := range gateways {
		byName[g.Name()] = g
	}
	return &PaymentService{
		paymentRepo:  paymentRepo,
		purchaseRepo: purchaseRepo,
		gateways:     byName,
		notifier:     notifier,
		logger:       logger,
	}
}

func (s *PaymentService) gatewayFor(provider db_models.PaymentProvider) (gateway.Gateway, error) {
	g, ok := s.gateways[provider]
	if !ok {
		return nil, utils.ErrProviderUnavailable
	}
	return g, nil
}

// CreateIntent records the attempt before calling the provider, so a crash
// between the two leaves a pending row rather than an untracked charge.
func (s *PaymentService) CreateIntent(ctx context.Context, userID uuid.UUID, request request_models.CreatePaymentRequest) (*response_models.PaymentIntentResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, request.PurchaseId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if purchase == nil {
		return nil, utils.ErrPurchaseNotFound
	}
	if purchase.CustomerID != userID {
		return nil, utils.ErrForbidden
	}

	existing, err := s.paymentRepo.FindPaymentsByPurchase(ctx, request.PurchaseId)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	// A fully refunded purchase may be paid again; partially refunded
	// still holds funds and stays blocked.
	for i := range existing {
		switch existing[i].Status {
		case db_models.PaymentStatusSucceeded,
			db_models.PaymentStatusPartiallyRefunded:
			return nil, utils.ErrAlreadyPaid
		}
	}

	provider := db_models.PaymentProvider(request.Provider)
	g, err := s.gatewayFor(provider)
	if err != nil {
		return nil, err
	}

	currency := request.Currency
	if currency == "" {
		currency = "usd"
	}

	payment := &db_models.Payment{
		PurchaseID: purchase.ID,
		UserID:     userID,
		Amount:     purchase.TotalPrice,
		Currency:   currency,
		Status:     db_models.PaymentStatusPending,
		Provider:   provider,
	}
	if request.PaymentMethod != "" {
		payment.PaymentMethod = &request.PaymentMethod
	}
	if err := s.paymentRepo.InsertPayment(ctx, payment); err != nil {
		return nil, utils.ErrDatabaseError
	}

	result, err := g.CreateIntent(ctx, gateway.IntentRequest{
		Amount:        payment.Amount,
		Currency:      currency,
		PaymentMethod: request.PaymentMethod,
		Metadata: map[string]string{
			"purchase_id": purchase.ID.String(),
			"payment_id":  payment.ID.String(),
		},
	})
	if err != nil {
		// An unreachable provider is not a rejection. The row stays
		// pending so a late webhook can still settle it.
		if errors.Is(err, utils.ErrProviderUnavailable) {
			return nil, err
		}
		message := err.Error()
		if _, applyErr := s.paymentRepo.ApplyPaymentStatus(ctx, payment.ID,
			db_models.PaymentStatusFailed,
			repositories.PaymentStatusFields{FailureMessage: &message}); applyErr != nil {
			s.logger.Error("failed to mark payment failed",
				zap.String("payment_id", payment.ID.String()),
				zap.Error(applyErr))
		}
		return nil, err
	}

	payment, err = s.paymentRepo.ApplyPaymentStatus(ctx, payment.ID, result.Status,
		repositories.PaymentStatusFields{ProviderPaymentID: &result.ProviderPaymentID})
	if err != nil || payment == nil {
		return nil, utils.ErrDatabaseError
	}

	return &response_models.PaymentIntentResponse{
		PaymentId:         payment.ID.String(),
		ProviderPaymentId: result.ProviderPaymentID,
		Provider:          string(provider),
		Amount:            payment.Amount,
		Currency:          payment.Currency,
		Status:            string(payment.Status),
		ClientSecret:      result.ClientSecret,
		ApprovalURL:       result.ApprovalURL,
	}, nil
}

// ConfirmPayment polls the provider for the current intent state. Webhooks
// remain the source of truth; this is the synchronous path for clients that
// just completed a redirect.
func (s *PaymentService) ConfirmPayment(ctx context.Context, userID uuid.UUID, paymentID uuid.UUID) (*response_models.PaymentResponse, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if payment == nil {
		return nil, utils.ErrPaymentNotFound
	}
	if payment.UserID != userID {
		return nil, utils.ErrForbidden
	}
	if isTerminalPaymentStatus(payment.Status) {
		return toPaymentResponse(payment), nil
	}
	if payment.ProviderPaymentID == nil {
		return nil, utils.ErrInvalidState
	}

	g, err := s.gatewayFor(payment.Provider)
	if err != nil {
		return nil, err
	}

	result, err := g.CaptureOrConfirm(ctx, *payment.ProviderPaymentID)
	if err != nil {
		return nil, err
	}

	fields := repositories.PaymentStatusFields{}
	if result.ProviderChargeID != "" {
		fields.ProviderChargeID = &result.ProviderChargeID
	}
	payment, err = s.paymentRepo.ApplyPaymentStatus(ctx, payment.ID, result.Status, fields)
	if err != nil || payment == nil {
		return nil, utils.ErrDatabaseError
	}

	if payment.Status == db_models.PaymentStatusSucceeded {
		s.markPurchasePaid(ctx, payment.PurchaseID)
	}
	s.notifier.NotifyPaymentResult(ctx, payment)

	return toPaymentResponse(payment), nil
}

func (s *PaymentService) GetPayment(ctx context.Context, userID uuid.UUID, isAdmin bool, paymentID uuid.UUID) (*response_models.PaymentDetailResponse, error) {
	payment, err := s.paymentRepo.FindPaymentWithRefunds(ctx, paymentID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if payment == nil {
		return nil, utils.ErrPaymentNotFound
	}
	if !isAdmin && payment.UserID != userID {
		return nil, utils.ErrForbidden
	}

	refundable, err := s.paymentRepo.RefundableAmount(ctx, payment.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	refunds := make([]response_models.RefundResponse, 0, len(payment.Refunds))
	for i := range payment.Refunds {
		refunds = append(refunds, *toRefundResponse(&payment.Refunds[i]))
	}

	return &response_models.PaymentDetailResponse{
		PaymentResponse:  *toPaymentResponse(payment),
		RefundableAmount: refundable,
		Refunds:          refunds,
	}, nil
}

func (s *PaymentService) ListMyPayments(ctx context.Context, userID uuid.UUID, filter repositories.PaymentFilter) ([]response_models.PaymentResponse, error) {
	payments, err := s.paymentRepo.ListPaymentsByUser(ctx, userID, filter)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toPaymentResponses(payments), nil
}

func (s *PaymentService) ListAllPayments(ctx context.Context, filter repositories.PaymentFilter) ([]response_models.PaymentResponse, error) {
	payments, err := s.paymentRepo.ListPayments(ctx, filter)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toPaymentResponses(payments), nil
}

func (s *PaymentService) ListPaymentsForPurchase(ctx context.Context, userID uuid.UUID, isAdmin bool, purchaseID uuid.UUID) ([]response_models.PaymentResponse, error) {
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if purchase == nil {
		return nil, utils.ErrPurchaseNotFound
	}
	if purchase.CustomerID != userID && !isAdmin {
		return nil, utils.ErrForbidden
	}

	payments, err := s.paymentRepo.FindPaymentsByPurchase(ctx, purchaseID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return toPaymentResponses(payments), nil
}

// CreateRefund issues a refund through the provider. The amount defaults to
// the full refundable balance, recomputed fresh so repeated partial refunds
// can never overdraw the payment.
func (s *PaymentService) CreateRefund(ctx context.Context, adminID uuid.UUID, paymentID uuid.UUID, request request_models.CreateRefundRequest) (*response_models.RefundResponse, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if payment == nil {
		return nil, utils.ErrPaymentNotFound
	}

	switch payment.Status {
	case db_models.PaymentStatusSucceeded,
		db_models.PaymentStatusPartiallyRefunded,
		db_models.PaymentStatusRefunded:
	default:
		return nil, utils.ErrInvalidState
	}

	refundable, err := s.paymentRepo.RefundableAmount(ctx, payment.ID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}

	amount := refundable
	if request.Amount != nil {
		amount = *request.Amount
	}
	if !amount.IsPositive() {
		return nil, utils.ErrInvalidAmount
	}
	if amount.GreaterThan(refundable) {
		return nil, utils.ErrExceedsRefundable
	}

	g, err := s.gatewayFor(payment.Provider)
	if err != nil {
		return nil, err
	}

	refund := &db_models.Refund{
		PaymentID:   payment.ID,
		Amount:      amount,
		Currency:    payment.Currency,
		Status:      db_models.RefundStatusPending,
		InitiatedBy: &adminID,
	}
	if request.Reason != "" {
		refund.Reason = &request.Reason
	}
	if request.AdminNotes != "" {
		refund.AdminNotes = &request.AdminNotes
	}
	if err := s.paymentRepo.InsertRefund(ctx, refund); err != nil {
		return nil, utils.ErrDatabaseError
	}

	req := gateway.RefundRequest{
		Amount:   amount,
		Currency: payment.Currency,
		Reason:   request.Reason,
		Metadata: map[string]string{"refund_id": refund.ID.String()},
	}
	if payment.ProviderPaymentID != nil {
		req.ProviderPaymentID = *payment.ProviderPaymentID
	}
	if payment.ProviderChargeID != nil {
		req.ProviderChargeID = *payment.ProviderChargeID
	}

	result, err := g.CreateRefund(ctx, req)
	if err != nil {
		if errors.Is(err, utils.ErrProviderUnavailable) {
			return nil, err
		}
		message := err.Error()
		if _, applyErr := s.paymentRepo.ApplyRefundStatus(ctx, refund.ID,
			db_models.RefundStatusFailed,
			repositories.RefundStatusFields{FailureMessage: &message}); applyErr != nil {
			s.logger.Error("failed to mark refund failed",
				zap.String("refund_id", refund.ID.String()),
				zap.Error(applyErr))
		}
		return nil, err
	}

	refund, err = s.paymentRepo.ApplyRefundStatus(ctx, refund.ID, result.Status,
		repositories.RefundStatusFields{ProviderRefundID: &result.ProviderRefundID})
	if err != nil || refund == nil {
		return nil, utils.ErrDatabaseError
	}

	if refund.Status == db_models.RefundStatusSucceeded {
		s.notifier.NotifyRefundResult(ctx, payment, refund)
	}

	return toRefundResponse(refund), nil
}

func (s *PaymentService) GetRefund(ctx context.Context, refundID uuid.UUID) (*response_models.RefundResponse, error) {
	refund, err := s.paymentRepo.FindRefundByID(ctx, refundID)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	if refund == nil {
		return nil, utils.ErrRefundNotFound
	}
	return toRefundResponse(refund), nil
}

func (s *PaymentService) ListRefunds(ctx context.Context, filter repositories.RefundFilter) ([]response_models.RefundResponse, error) {
	refunds, err := s.paymentRepo.ListRefunds(ctx, filter)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	responses := make([]response_models.RefundResponse, 0, len(refunds))
	for i := range refunds {
		responses = append(responses, *toRefundResponse(&refunds[i]))
	}
	return responses, nil
}

func (s *PaymentService) Summary(ctx context.Context, from, to *time.Time) (*repositories.PaymentSummary, error) {
	summary, err := s.paymentRepo.Summary(ctx, from, to)
	if err != nil {
		return nil, utils.ErrDatabaseError
	}
	return summary, nil
}

// ApplyProviderEvent reconciles a verified webhook event against the ledger.
// Unknown references are logged and acknowledged: the event may belong to a
// row created by another environment sharing the provider account. Terminal
// rows are never transitioned again, which makes redelivery a no-op.
func (s *PaymentService) ApplyProviderEvent(ctx context.Context, provider db_models.PaymentProvider, event *gateway.Event) error {
	switch event.Kind {
	case gateway.EventIgnored:
		return nil
	case gateway.EventPaymentSucceeded, gateway.EventPaymentFailed:
		return s.applyPaymentEvent(ctx, provider, event)
	case gateway.EventRefundSucceeded, gateway.EventRefundFailed:
		return s.applyRefundEvent(ctx, provider, event)
	case gateway.EventDispute:
		s.logger.Warn("dispute opened",
			zap.String("provider", string(provider)),
			zap.String("provider_payment_id", event.ProviderPaymentID),
			zap.String("event_id", event.ID))
		return nil
	default:
		return nil
	}
}

func (s *PaymentService) applyPaymentEvent(ctx context.Context, provider db_models.PaymentProvider, event *gateway.Event) error {
	payment, err := s.resolvePayment(ctx, provider, event)
	if err != nil {
		return err
	}
	if payment == nil {
		s.logger.Warn("webhook references unknown payment",
			zap.String("provider", string(provider)),
			zap.String("provider_payment_id", event.ProviderPaymentID),
			zap.String("event_type", event.Type))
		return nil
	}

	if isTerminalPaymentStatus(payment.Status) {
		s.logger.Info("webhook replay ignored, payment already terminal",
			zap.String("payment_id", payment.ID.String()),
			zap.String("status", string(payment.Status)))
		return nil
	}

	fields := repositories.PaymentStatusFields{}
	status := db_models.PaymentStatusSucceeded
	if event.Kind == gateway.EventPaymentFailed {
		status = db_models.PaymentStatusFailed
		if event.FailureCode != "" {
			fields.FailureCode = &event.FailureCode
		}
		if event.FailureMessage != "" {
			fields.FailureMessage = &event.FailureMessage
		}
	}
	if event.ProviderPaymentID != "" && payment.ProviderPaymentID == nil {
		fields.ProviderPaymentID = &event.ProviderPaymentID
	}
	if event.ProviderChargeID != "" {
		fields.ProviderChargeID = &event.ProviderChargeID
	}

	payment, err = s.paymentRepo.ApplyPaymentStatus(ctx, payment.ID, status, fields)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if payment == nil {
		return nil
	}

	if payment.Status == db_models.PaymentStatusSucceeded {
		s.markPurchasePaid(ctx, payment.PurchaseID)
	}
	s.notifier.NotifyPaymentResult(ctx, payment)
	return nil
}

func (s *PaymentService) applyRefundEvent(ctx context.Context, provider db_models.PaymentProvider, event *gateway.Event) error {
	refund, err := s.paymentRepo.FindRefundByProviderID(ctx, event.ProviderRefundID)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if refund == nil {
		s.logger.Warn("webhook references unknown refund",
			zap.String("provider", string(provider)),
			zap.String("provider_refund_id", event.ProviderRefundID),
			zap.String("event_type", event.Type))
		return nil
	}

	if isTerminalRefundStatus(refund.Status) {
		s.logger.Info("webhook replay ignored, refund already terminal",
			zap.String("refund_id", refund.ID.String()),
			zap.String("status", string(refund.Status)))
		return nil
	}

	fields := repositories.RefundStatusFields{}
	status := db_models.RefundStatusSucceeded
	if event.Kind == gateway.EventRefundFailed {
		status = db_models.RefundStatusFailed
		if event.FailureCode != "" {
			fields.FailureCode = &event.FailureCode
		}
		if event.FailureMessage != "" {
			fields.FailureMessage = &event.FailureMessage
		}
	}

	refund, err = s.paymentRepo.ApplyRefundStatus(ctx, refund.ID, status, fields)
	if err != nil {
		return utils.ErrDatabaseError
	}
	if refund == nil {
		return nil
	}

	payment, err := s.paymentRepo.FindPaymentByID(ctx, refund.PaymentID)
	if err == nil && payment != nil {
		s.notifier.NotifyRefundResult(ctx, payment, refund)
	}
	return nil
}

// resolvePayment matches an event to a ledger row, falling back to the
// purchase correlation id for providers whose intent reference is only
// assigned server-side after approval.
func (s *PaymentService) resolvePayment(ctx context.Context, provider db_models.PaymentProvider, event *gateway.Event) (*db_models.Payment, error) {
	if event.ProviderPaymentID != "" {
		payment, err := s.paymentRepo.FindPaymentByProviderID(ctx, event.ProviderPaymentID)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		if payment != nil {
			return payment, nil
		}
	}

	if event.PurchaseID != "" {
		purchaseID, err := uuid.Parse(event.PurchaseID)
		if err != nil {
			return nil, nil
		}
		payment, err := s.paymentRepo.FindOldestPendingPayment(ctx, purchaseID, provider)
		if err != nil {
			return nil, utils.ErrDatabaseError
		}
		return payment, nil
	}
	return nil, nil
}

func (s *PaymentService) markPurchasePaid(ctx context.Context, purchaseID uuid.UUID) {
	purchase, err := s.purchaseRepo.FindByID(ctx, purchaseID)
	if err != nil || purchase == nil {
		return
	}
	if purchase.Status != db_models.OrderStatusPending {
		return
	}
	purchase.Status = db_models.OrderStatusConfirmed
	if err := s.purchaseRepo.UpdatePurchase(ctx, purchase); err != nil {
		s.logger.Error("failed to confirm purchase after payment",
			zap.String("purchase_id", purchaseID.String()),
			zap.Error(err))
	}
}

func isTerminalPaymentStatus(status db_models.PaymentStatus) bool {
	switch status {
	case db_models.PaymentStatusSucceeded,
		db_models.PaymentStatusFailed,
		db_models.PaymentStatusCancelled,
		db_models.PaymentStatusRefunded,
		db_models.PaymentStatusPartiallyRefunded:
		return true
	}
	return false
}

func isTerminalRefundStatus(status db_models.RefundStatus) bool {
	switch status {
	case db_models.RefundStatusSucceeded,
		db_models.RefundStatusFailed,
		db_models.RefundStatusCancelled:
		return true
	}
	return false
}

func toPaymentResponse(payment *db_models.Payment) *response_models.PaymentResponse {
	response := &response_models.PaymentResponse{
		ID:                payment.ID.String(),
		PurchaseId:        payment.PurchaseID.String(),
		Amount:            payment.Amount,
		Currency:          payment.Currency,
		Status:            string(payment.Status),
		Provider:          string(payment.Provider),
		ProviderPaymentId: payment.ProviderPaymentID,
		FailureCode:       payment.FailureCode,
		FailureMessage:    payment.FailureMessage,
		SucceededAt:       payment.SucceededAt,
		FailedAt:          payment.FailedAt,
		CreatedAt:         payment.CreatedAt,
	}
	if payment.PaymentMethod != nil {
		response.PaymentMethod = *payment.PaymentMethod
	}
	return response
}

func toPaymentResponses(payments []db_models.Payment) []response_models.PaymentResponse {
	responses := make([]response_models.PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, *toPaymentResponse(&payments[i]))
	}
	return responses
}

func toRefundResponse(refund *db_models.Refund) *response_models.RefundResponse {
	response := &response_models.RefundResponse{
		ID:               refund.ID.String(),
		PaymentId:        refund.PaymentID.String(),
		Amount:           refund.Amount,
		Currency:         refund.Currency,
		Status:           string(refund.Status),
		ProviderRefundId: refund.ProviderRefundID,
		FailureCode:      refund.FailureCode,
		FailureMessage:   refund.FailureMessage,
		SucceededAt:      refund.SucceededAt,
		CreatedAt:        refund.CreatedAt,
	}
	if refund.Reason != nil {
		response.Reason = *refund.Reason
	}
	return response
}
