package model

import "time"

type Contract struct {
	ID                 int            `json:"id"`
	Title              string         `json:"title"`
	Description        string         `json:"description"`
	Status             ContractStatus `json:"status"`
	ClientID           int            `json:"client_id"`
	FreelancerID       int            `json:"freelancer_id"`
	TotalAmount        float64        `json:"total_amount"`
	Currency           string         `json:"currency"`
	ContractType       string         `json:"contract_type"`
	TermsAndConditions string         `json:"terms_and_conditions"`
	StartDate          time.Time      `json:"start_date"`
	EndDate            *time.Time     `json:"end_date,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

type ContractTemplate struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	Category    string    `json:"category"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
}

// Stats is the dashboard aggregate for one user.
type Stats struct {
	ActiveContracts int     `json:"active_contracts"`
	PendingPayments int     `json:"pending_payments"`
	TotalEarned     float64 `json:"total_earned"`
	TemplateCount   int     `json:"template_count"`
}
