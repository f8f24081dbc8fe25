package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/bug-service/internal/service"
)

// StartNotificationWorker registers the ticket event subscribers.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		logger.Warn("notification service not configured; ticket events have no subscribers")
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification subscribers registered")
}
