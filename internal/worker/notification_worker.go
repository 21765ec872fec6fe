package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/servicedesk/internal/service"
)

// StartNotificationWorker subscribes the notification handlers to the
// dispatcher. Delivery runs synchronously on publish.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
	logger.Info("notification handlers registered")
}
