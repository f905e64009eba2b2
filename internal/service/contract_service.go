package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"contractpay/internal/cache"
	"contractpay/internal/model"
	"contractpay/internal/mq"
	"contractpay/pkg/metrics"
)

var (
	ErrInvalidStatus    = errors.New("invalid status")
	ErrContractNotFound = errors.New("contract not found")
)

const (
	contractsKey = "/api/contracts"
	statsKey     = "/api/stats"
)

// ContractStore is the contract persistence the service needs.
type ContractStore interface {
	Insert(ctx context.Context, c *model.Contract) error
	FindByID(ctx context.Context, id int) (*model.Contract, error)
	ListByUser(ctx context.Context, userID int, userType string) ([]model.Contract, error)
	UpdateStatus(ctx context.Context, id int, status model.ContractStatus) error
	CountActiveByUser(ctx context.Context, userID int) (int, error)
}

// MilestoneStore is the milestone persistence the service needs.
type MilestoneStore interface {
	Insert(ctx context.Context, m *model.Milestone) error
	FindByID(ctx context.Context, id int) (*model.Milestone, error)
	ListByContract(ctx context.Context, contractID int) ([]model.Milestone, error)
	ListByUser(ctx context.Context, userID int) ([]model.Milestone, error)
	UpdateStatus(ctx context.Context, id int, status model.MilestoneStatus) error
	CountPendingPaymentsByUser(ctx context.Context, userID int) (int, error)
	SumEarnedByUser(ctx context.Context, userID int) (float64, error)
}

// TemplateCounter is the slice of template persistence stats needs.
type TemplateCounter interface {
	CountByUser(ctx context.Context, userID int) (int, error)
}

// ContractService owns contracts, their milestones and the dashboard
// aggregates. Mutations publish domain events and invalidate the response
// cache under the mutated resource's key prefix.
type ContractService struct {
	contracts  ContractStore
	milestones MilestoneStore
	templates  TemplateCounter
	producer   EventPublisher
	cache      cache.Cache
	logger     *zap.Logger
}

func NewContractService(
	contracts ContractStore,
	milestones MilestoneStore,
	templates TemplateCounter,
	producer EventPublisher,
	c cache.Cache,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		contracts:  contracts,
		milestones: milestones,
		templates:  templates,
		producer:   producer,
		cache:      c,
		logger:     logger,
	}
}

type CreateContractInput struct {
	Title              string
	Description        string
	ClientID           int
	FreelancerID       int
	TotalAmount        float64
	Currency           string
	ContractType       string
	TermsAndConditions string
	StartDate          time.Time
	EndDate            *time.Time
}

// CreateContract stores a new contract in draft and publishes `contract.created`.
func (s *ContractService) CreateContract(ctx context.Context, in CreateContractInput) (*model.Contract, error) {
	currency := in.Currency
	if currency == "" {
		currency = "USD"
	}
	c := &model.Contract{
		Title:              in.Title,
		Description:        in.Description,
		Status:             model.ContractDraft,
		ClientID:           in.ClientID,
		FreelancerID:       in.FreelancerID,
		TotalAmount:        in.TotalAmount,
		Currency:           currency,
		ContractType:       in.ContractType,
		TermsAndConditions: in.TermsAndConditions,
		StartDate:          in.StartDate,
		EndDate:            in.EndDate,
	}

	if err := s.contracts.Insert(ctx, c); err != nil {
		return nil, err
	}
	metrics.IncrementContractMutation("create")

	s.publish(mq.RoutingKeyContractCreated, mq.ContractCreatedPayload{
		ContractID:   c.ID,
		ClientID:     c.ClientID,
		FreelancerID: c.FreelancerID,
		Title:        c.Title,
		CreatedAt:    c.CreatedAt,
	})
	s.invalidate(ctx, contractsKey)

	return c, nil
}

func (s *ContractService) GetContract(ctx context.Context, id int) (*model.Contract, error) {
	return s.contracts.FindByID(ctx, id)
}

func (s *ContractService) ListContracts(ctx context.Context, userID int, userType string) ([]model.Contract, error) {
	return s.contracts.ListByUser(ctx, userID, userType)
}

// UpdateContractStatus moves a contract to a new status and publishes
// `contract.status_updated`.
func (s *ContractService) UpdateContractStatus(ctx context.Context, id int, status model.ContractStatus) (*model.Contract, error) {
	if !model.ValidContractStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	c, err := s.contracts.FindByID(ctx, id)
	if err != nil {
		return nil, ErrContractNotFound
	}

	if err := s.contracts.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	c.Status = status
	metrics.IncrementContractMutation("update_status")

	s.publish(mq.RoutingKeyContractStatusUpdated, mq.ContractStatusUpdatedPayload{
		ContractID:   c.ID,
		ClientID:     c.ClientID,
		FreelancerID: c.FreelancerID,
		Status:       string(status),
	})
	s.invalidate(ctx, contractsKey)
	s.invalidate(ctx, contractsKey, strconv.Itoa(id))

	return c, nil
}

type CreateMilestoneInput struct {
	ContractID  int
	Title       string
	Description string
	Amount      float64
	DueDate     time.Time
}

// CreateMilestone adds a milestone to a contract.
func (s *ContractService) CreateMilestone(ctx context.Context, in CreateMilestoneInput) (*model.Milestone, error) {
	if _, err := s.contracts.FindByID(ctx, in.ContractID); err != nil {
		return nil, ErrContractNotFound
	}

	m := &model.Milestone{
		ContractID:  in.ContractID,
		Title:       in.Title,
		Description: in.Description,
		Amount:      in.Amount,
		Status:      model.MilestoneNotStarted,
		DueDate:     in.DueDate,
	}
	if err := s.milestones.Insert(ctx, m); err != nil {
		return nil, err
	}
	metrics.IncrementMilestoneMutation("create")

	s.invalidate(ctx, contractsKey, strconv.Itoa(in.ContractID), "milestones")
	return m, nil
}

func (s *ContractService) ListMilestones(ctx context.Context, contractID int) ([]model.Milestone, error) {
	return s.milestones.ListByContract(ctx, contractID)
}

// UpdateMilestoneStatus moves a milestone to a new status. Completing it
// stamps the completion date and publishes `milestone.completed`.
func (s *ContractService) UpdateMilestoneStatus(ctx context.Context, id int, status model.MilestoneStatus) (*model.Milestone, error) {
	if !model.ValidMilestoneStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	m, err := s.milestones.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.milestones.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	m.Status = status

	if status == model.MilestoneCompleted {
		now := time.Now()
		m.CompletedDate = &now
		metrics.IncrementMilestoneMutation("complete")
		s.publish(mq.RoutingKeyMilestoneCompleted, mq.MilestoneCompletedPayload{
			MilestoneID: m.ID,
			ContractID:  m.ContractID,
			Title:       m.Title,
			Amount:      m.Amount,
			CompletedAt: now,
		})
		s.invalidate(ctx, statsKey)
	} else {
		metrics.IncrementMilestoneMutation("update_status")
	}
	s.invalidate(ctx, contractsKey, strconv.Itoa(m.ContractID), "milestones")

	return m, nil
}

// Payments groups a user's milestones into the dashboard's payment buckets.
type Payments struct {
	Pending   []model.Milestone `json:"pending"`
	Upcoming  []model.Milestone `json:"upcoming"`
	Completed []model.Milestone `json:"completed"`
}

// ListPayments buckets milestones by how close to payment they are:
// awaiting review or payout, still being worked, or already paid out.
func (s *ContractService) ListPayments(ctx context.Context, userID int) (*Payments, error) {
	milestones, err := s.milestones.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	p := &Payments{}
	for _, m := range milestones {
		switch m.Status {
		case model.MilestonePendingReview, model.MilestoneReadyForPayment:
			p.Pending = append(p.Pending, m)
		case model.MilestoneNotStarted, model.MilestoneInProgress:
			p.Upcoming = append(p.Upcoming, m)
		case model.MilestoneCompleted:
			p.Completed = append(p.Completed, m)
		}
	}
	return p, nil
}

// Stats aggregates the user's dashboard numbers.
func (s *ContractService) Stats(ctx context.Context, userID int) (*model.Stats, error) {
	active, err := s.contracts.CountActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	pending, err := s.milestones.CountPendingPaymentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	earned, err := s.milestones.SumEarnedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	templateCount, err := s.templates.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.Stats{
		ActiveContracts: active,
		PendingPayments: pending,
		TotalEarned:     earned,
		TemplateCount:   templateCount,
	}, nil
}

func (s *ContractService) publish(routingKey string, payload any) {
	if err := s.producer.Publish(routingKey, payload); err != nil {
		s.logger.Warn("publish event failed", zap.String("routing_key", routingKey), zap.Error(err))
	}
}

func (s *ContractService) invalidate(ctx context.Context, prefix ...string) {
	if err := s.cache.Invalidate(ctx, prefix...); err != nil {
		s.logger.Warn("cache invalidation failed", zap.Strings("prefix", prefix), zap.Error(err))
		return
	}
	metrics.IncrementCacheInvalidation(prefix[0])
}
