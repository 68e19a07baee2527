package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"shoply/internal/models/db_models"
)

const notificationCollection = "notifications"

// Notification is the document stored per user event. Notifications are
// best-effort: delivery failures are logged and never bubble up into the
// operation that triggered them.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Kind      string             `bson:"kind" json:"kind"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt int64              `bson:"created_at" json:"created_at"`
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type NotificationServiceInterface interface {
	NotifyOrderPlaced(ctx context.Context, userID uuid.UUID, purchases []db_models.Purchase)
	NotifyOrderStatusChanged(ctx context.Context, purchase *db_models.Purchase)
	NotifyPaymentResult(ctx context.Context, payment *db_models.Payment)
	NotifyRefundResult(ctx context.Context, payment *db_models.Payment, refund *db_models.Refund)
	ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error)
	MarkRead(ctx context.Context, userID uuid.UUID, notificationID string) error
}

type NotificationService struct {
	collection *mongo.Collection
	smtp       *SMTPConfig
	logger     *zap.Logger
}

// NewNotificationService accepts a nil smtp config, in which case the email
// channel is disabled and only documents are written.
func NewNotificationService(db *mongo.Database, smtp *SMTPConfig, logger *zap.Logger) NotificationServiceInterface {
	return &NotificationService{
		collection: db.Collection(notificationCollection),
		smtp:       smtp,
		logger:     logger,
	}
}

func (s *NotificationService) store(ctx context.Context, userID uuid.UUID, kind, title, body string) {
	doc := Notification{
		UserID:    userID.String(),
		Kind:      kind,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().Unix(),
	}
	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		s.logger.Warn("notification insert failed",
			zap.String("user_id", userID.String()),
			zap.String("kind", kind),
			zap.Error(err))
	}
}

func (s *NotificationService) sendEmail(to, subject, body string) {
	if s.smtp == nil || to == "" {
		return
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.smtp.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.smtp.Host, s.smtp.Port, s.smtp.Username, s.smtp.Password)
	if err := d.DialAndSend(m); err != nil {
		s.logger.Warn("notification email failed",
			zap.String("to", to),
			zap.Error(err))
	}
}

func (s *NotificationService) NotifyOrderPlaced(ctx context.Context, userID uuid.UUID, purchases []db_models.Purchase) {
	s.store(ctx, userID, "order_placed",
		"Order received",
		fmt.Sprintf("Your order with %d item(s) has been placed.", len(purchases)))
}

func (s *NotificationService) NotifyOrderStatusChanged(ctx context.Context, purchase *db_models.Purchase) {
	s.store(ctx, purchase.CustomerID, "order_status",
		"Order update",
		fmt.Sprintf("Order %s is now %s.", purchase.ID, purchase.Status))
}

func (s *NotificationService) NotifyPaymentResult(ctx context.Context, payment *db_models.Payment) {
	var title, body string
	switch payment.Status {
	case db_models.PaymentStatusSucceeded:
		title = "Payment confirmed"
		body = fmt.Sprintf("Your payment of %s %s was successful.", payment.Amount, payment.Currency)
	case db_models.PaymentStatusFailed:
		title = "Payment failed"
		body = fmt.Sprintf("Your payment of %s %s could not be processed.", payment.Amount, payment.Currency)
	default:
		return
	}
	s.store(ctx, payment.UserID, "payment", title, body)
	if payment.User.Email != "" {
		s.sendEmail(payment.User.Email, title, body)
	}
}

func (s *NotificationService) NotifyRefundResult(ctx context.Context, payment *db_models.Payment, refund *db_models.Refund) {
	var title, body string
	switch refund.Status {
	case db_models.RefundStatusSucceeded:
		title = "Refund issued"
		body = fmt.Sprintf("A refund of %s %s has been issued to you.", refund.Amount, refund.Currency)
	case db_models.RefundStatusFailed:
		title = "Refund failed"
		body = fmt.Sprintf("Your refund of %s %s could not be processed.", refund.Amount, refund.Currency)
	default:
		return
	}
	s.store(ctx, payment.UserID, "refund", title, body)
}

func (s *NotificationService) ListNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error) {
	filter := bson.M{"user_id": userID.String()}
	if unreadOnly {
		filter["read"] = false
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100)
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notifications []Notification
	if err := cursor.All(ctx, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID uuid.UUID, notificationID string) error {
	oid, err := primitive.ObjectIDFromHex(notificationID)
	if err != nil {
		return err
	}
	_, err = s.collection.UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": userID.String()},
		bson.M{"$set": bson.M{"read": true}})
	return err
}
