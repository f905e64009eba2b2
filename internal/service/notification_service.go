package service

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"contractpay/internal/format"
	"contractpay/internal/model"
	"contractpay/internal/mq"
)

// NotificationStore is the notification persistence the worker needs.
type NotificationStore interface {
	Insert(ctx context.Context, log *model.NotificationLog) error
}

// ContractFinder looks up one contract, used to resolve event recipients.
type ContractFinder interface {
	FindByID(ctx context.Context, id int) (*model.Contract, error)
}

// NotificationService turns domain events into notification log rows for
// both parties of the affected contract.
type NotificationService struct {
	logs      NotificationStore
	contracts ContractFinder
	logger    *zap.Logger
}

func NewNotificationService(logs NotificationStore, contracts ContractFinder, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		logs:      logs,
		contracts: contracts,
		logger:    logger,
	}
}

func (s *NotificationService) HandleUserRegistered(ctx context.Context, raw json.RawMessage) error {
	var p mq.UserRegisteredPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	return s.logs.Insert(ctx, &model.NotificationLog{
		UserID:  p.UserID,
		Message: fmt.Sprintf("Welcome to ContractPay, your %s account is ready", p.UserType),
	})
}

func (s *NotificationService) HandleContractCreated(ctx context.Context, raw json.RawMessage) error {
	var p mq.ContractCreatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	msg := fmt.Sprintf("Contract %q was created", p.Title)
	return s.notifyBoth(ctx, p.ClientID, p.FreelancerID, p.ContractID, msg)
}

func (s *NotificationService) HandleContractStatusUpdated(ctx context.Context, raw json.RawMessage) error {
	var p mq.ContractStatusUpdatedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	msg := fmt.Sprintf("Contract %d moved to %s", p.ContractID, model.StatusLabel(p.Status))
	return s.notifyBoth(ctx, p.ClientID, p.FreelancerID, p.ContractID, msg)
}

func (s *NotificationService) HandleMilestoneCompleted(ctx context.Context, raw json.RawMessage) error {
	var p mq.MilestoneCompletedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	c, err := s.contracts.FindByID(ctx, p.ContractID)
	if err != nil {
		s.logger.Warn("contract lookup failed for milestone event",
			zap.Int("contract_id", p.ContractID), zap.Error(err))
		return err
	}
	msg := fmt.Sprintf("Milestone %q was completed, %s is ready for payout", p.Title, format.Currency(p.Amount))
	return s.notifyBoth(ctx, c.ClientID, c.FreelancerID, p.ContractID, msg)
}

func (s *NotificationService) HandleMilestoneOverdue(ctx context.Context, raw json.RawMessage) error {
	var p mq.MilestoneOverduePayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return err
	}
	c, err := s.contracts.FindByID(ctx, p.ContractID)
	if err != nil {
		s.logger.Warn("contract lookup failed for milestone event",
			zap.Int("contract_id", p.ContractID), zap.Error(err))
		return err
	}
	msg := fmt.Sprintf("Milestone %d is overdue since %s", p.MilestoneID, format.Date(p.DueDate))
	return s.notifyBoth(ctx, c.ClientID, c.FreelancerID, p.ContractID, msg)
}

func (s *NotificationService) notifyBoth(ctx context.Context, clientID, freelancerID, contractID int, msg string) error {
	for _, userID := range []int{clientID, freelancerID} {
		if userID == 0 {
			continue
		}
		if err := s.logs.Insert(ctx, &model.NotificationLog{
			UserID:     userID,
			ContractID: contractID,
			Message:    msg,
		}); err != nil {
			return err
		}
	}
	return nil
}
