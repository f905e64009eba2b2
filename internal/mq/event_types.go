package mq

import "time"

// Routing keys for domain events.
const (
	RoutingKeyUserRegistered        = "user.registered"
	RoutingKeyContractCreated       = "contract.created"
	RoutingKeyContractStatusUpdated = "contract.status_updated"
	RoutingKeyMilestoneCompleted    = "milestone.completed"
	RoutingKeyMilestoneOverdue      = "milestone.overdue"
)

type UserRegisteredPayload struct {
	UserID   int    `json:"user_id"`
	Email    string `json:"email"`
	UserType string `json:"user_type"`
}

type ContractCreatedPayload struct {
	ContractID   int       `json:"contract_id"`
	ClientID     int       `json:"client_id"`
	FreelancerID int       `json:"freelancer_id"`
	Title        string    `json:"title"`
	CreatedAt    time.Time `json:"created_at"`
}

type ContractStatusUpdatedPayload struct {
	ContractID   int    `json:"contract_id"`
	ClientID     int    `json:"client_id"`
	FreelancerID int    `json:"freelancer_id"`
	Status       string `json:"status"`
}

type MilestoneCompletedPayload struct {
	MilestoneID int       `json:"milestone_id"`
	ContractID  int       `json:"contract_id"`
	Title       string    `json:"title"`
	Amount      float64   `json:"amount"`
	CompletedAt time.Time `json:"completed_at"`
}

type MilestoneOverduePayload struct {
	MilestoneID int       `json:"milestone_id"`
	ContractID  int       `json:"contract_id"`
	DueDate     time.Time `json:"due_date"`
}
