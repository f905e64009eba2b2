package mqhandler

import (
	"contractpay/internal/mq"
	"contractpay/internal/service"
)

// RegisterNotificationHandlers binds every domain event the worker cares
// about to the notification service.
func RegisterNotificationHandlers(router *mq.Router, svc *service.NotificationService) {
	router.Register(mq.RoutingKeyUserRegistered, svc.HandleUserRegistered)
	router.Register(mq.RoutingKeyContractCreated, svc.HandleContractCreated)
	router.Register(mq.RoutingKeyContractStatusUpdated, svc.HandleContractStatusUpdated)
	router.Register(mq.RoutingKeyMilestoneCompleted, svc.HandleMilestoneCompleted)
	router.Register(mq.RoutingKeyMilestoneOverdue, svc.HandleMilestoneOverdue)
}
