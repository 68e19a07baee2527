package notification_fx

import (
	"os"
	"strconv"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"shoply/internal/services"
)

var Module = fx.Provide(
	provideNotificationService)

func provideNotificationService(db *mongo.Database, logger *zap.Logger) services.NotificationServiceInterface {
	return services.NewNotificationService(db, smtpFromEnv(), logger)
}

// smtpFromEnv returns nil when SMTP_HOST is unset, which disables the
// email channel entirely.
func smtpFromEnv() *services.SMTPConfig {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		return nil
	}
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	return &services.SMTPConfig{
		Host:     host,
		Port:     port,
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
		From:     os.Getenv("SMTP_FROM"),
	}
}
