package model

import "time"

type Milestone struct {
	ID            int             `json:"id"`
	ContractID    int             `json:"contract_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Amount        float64         `json:"amount"`
	Status        MilestoneStatus `json:"status"`
	DueDate       time.Time       `json:"due_date"`
	CompletedDate *time.Time      `json:"completed_date,omitempty"` // set only when status is completed
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type NotificationLog struct {
	ID         int       `json:"id"`
	UserID     int       `json:"user_id"`
	ContractID int       `json:"contract_id"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
