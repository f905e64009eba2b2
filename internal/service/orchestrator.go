package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"contractpay/internal/model"
	"contractpay/internal/mq"
)

// OverdueStore is the milestone slice the orchestrator needs.
type OverdueStore interface {
	ListOverdueCandidates(ctx context.Context, cutoff time.Time) ([]model.Milestone, error)
	UpdateStatus(ctx context.Context, id int, status model.MilestoneStatus) error
}

// Orchestrator runs the periodic background checks of the worker.
type Orchestrator struct {
	milestones OverdueStore
	producer   EventPublisher
	logger     *zap.Logger
}

func NewOrchestrator(milestones OverdueStore, producer EventPublisher, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		milestones: milestones,
		producer:   producer,
		logger:     logger,
	}
}

// CheckAndMarkOverdue marks unfinished milestones past their due date as
// overdue and publishes a `milestone.overdue` event for each.
func (o *Orchestrator) CheckAndMarkOverdue(ctx context.Context) error {
	candidates, err := o.milestones.ListOverdueCandidates(ctx, time.Now())
	if err != nil {
		o.logger.Error("list overdue candidates failed", zap.Error(err))
		return err
	}
	if len(candidates) == 0 {
		o.logger.Debug("no overdue milestones found")
		return nil
	}

	marked := 0
	for _, m := range candidates {
		if err := o.milestones.UpdateStatus(ctx, m.ID, model.MilestoneOverdue); err != nil {
			o.logger.Error("mark milestone overdue failed",
				zap.Int("milestone_id", m.ID),
				zap.Error(err),
			)
			continue
		}
		marked++

		payload := mq.MilestoneOverduePayload{
			MilestoneID: m.ID,
			ContractID:  m.ContractID,
			DueDate:     m.DueDate,
		}
		if err := o.producer.Publish(mq.RoutingKeyMilestoneOverdue, payload); err != nil {
			o.logger.Error("publish milestone.overdue failed",
				zap.Int("milestone_id", m.ID),
				zap.Error(err),
			)
		}
	}

	o.logger.Info("overdue check completed",
		zap.Int("marked", marked),
		zap.Int("candidates", len(candidates)),
	)
	return nil
}

// Run checks once immediately and then on every tick until ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context, interval time.Duration) {
	_ = o.CheckAndMarkOverdue(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = o.CheckAndMarkOverdue(ctx)
		}
	}
}
