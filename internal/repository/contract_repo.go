package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"contractpay/internal/model"
)

const contractColumns = `id, title, description, status, client_id, freelancer_id,
        total_amount, currency, contract_type, terms_and_conditions,
        start_date, end_date, created_at, updated_at`

type ContractRepository struct {
	db *pgxpool.Pool
}

func NewContractRepository(db *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{db: db}
}

// Insert stores a new contract and fills in its generated ID.
func (r *ContractRepository) Insert(ctx context.Context, c *model.Contract) error {
	defer observe("insert", "contracts")()
	query := `
        INSERT INTO contracts (title, description, status, client_id, freelancer_id,
            total_amount, currency, contract_type, terms_and_conditions,
            start_date, end_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		c.Title,
		c.Description,
		c.Status,
		c.ClientID,
		c.FreelancerID,
		c.TotalAmount,
		c.Currency,
		c.ContractType,
		c.TermsAndConditions,
		c.StartDate,
		c.EndDate,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
}

// FindByID returns one contract.
func (r *ContractRepository) FindByID(ctx context.Context, id int) (*model.Contract, error) {
	defer observe("select", "contracts")()
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE id = $1`
	var c model.Contract
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Title, &c.Description, &c.Status, &c.ClientID, &c.FreelancerID,
		&c.TotalAmount, &c.Currency, &c.ContractType, &c.TermsAndConditions,
		&c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUser returns the contracts visible to a user. Clients see contracts
// they commissioned, everyone else sees contracts they work on.
func (r *ContractRepository) ListByUser(ctx context.Context, userID int, userType string) ([]model.Contract, error) {
	defer observe("select", "contracts")()
	column := "freelancer_id"
	if userType == model.UserTypeClient {
		column = "client_id"
	}
	query := `SELECT ` + contractColumns + ` FROM contracts WHERE ` + column + ` = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []model.Contract
	for rows.Next() {
		var c model.Contract
		if err := rows.Scan(
			&c.ID, &c.Title, &c.Description, &c.Status, &c.ClientID, &c.FreelancerID,
			&c.TotalAmount, &c.Currency, &c.ContractType, &c.TermsAndConditions,
			&c.StartDate, &c.EndDate, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

// UpdateStatus moves a contract to a new status.
func (r *ContractRepository) UpdateStatus(ctx context.Context, id int, status model.ContractStatus) error {
	defer observe("update", "contracts")()
	query := `UPDATE contracts SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

// CountActiveByUser counts a user's contracts currently in progress.
func (r *ContractRepository) CountActiveByUser(ctx context.Context, userID int) (int, error) {
	defer observe("select", "contracts")()
	query := `
        SELECT COUNT(*) FROM contracts
        WHERE (client_id = $1 OR freelancer_id = $1) AND status = $2
    `
	var count int
	err := r.db.QueryRow(ctx, query, userID, model.ContractActive).Scan(&count)
	return count, err
}
