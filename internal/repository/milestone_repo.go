package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"contractpay/internal/model"
)

const milestoneColumns = `id, contract_id, title, description, amount, status,
        due_date, completed_date, created_at, updated_at`

type MilestoneRepository struct {
	db *pgxpool.Pool
}

func NewMilestoneRepository(db *pgxpool.Pool) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// Insert stores a new milestone and fills in its generated ID.
func (r *MilestoneRepository) Insert(ctx context.Context, m *model.Milestone) error {
	defer observe("insert", "milestones")()
	query := `
        INSERT INTO milestones (contract_id, title, description, amount, status, due_date, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
        RETURNING id, created_at, updated_at
    `
	return r.db.QueryRow(ctx, query,
		m.ContractID,
		m.Title,
		m.Description,
		m.Amount,
		m.Status,
		m.DueDate,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// FindByID returns one milestone.
func (r *MilestoneRepository) FindByID(ctx context.Context, id int) (*model.Milestone, error) {
	defer observe("select", "milestones")()
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE id = $1`
	var m model.Milestone
	err := r.db.QueryRow(ctx, query, id).Scan(
		&m.ID, &m.ContractID, &m.Title, &m.Description, &m.Amount, &m.Status,
		&m.DueDate, &m.CompletedDate, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByContract returns a contract's milestones in due-date order.
func (r *MilestoneRepository) ListByContract(ctx context.Context, contractID int) ([]model.Milestone, error) {
	defer observe("select", "milestones")()
	query := `SELECT ` + milestoneColumns + ` FROM milestones WHERE contract_id = $1 ORDER BY due_date ASC`
	rows, err := r.db.Query(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMilestones(rows)
}

// ListByUser returns the milestones of every contract a user participates in.
func (r *MilestoneRepository) ListByUser(ctx context.Context, userID int) ([]model.Milestone, error) {
	defer observe("select", "milestones")()
	query := `
        SELECT m.id, m.contract_id, m.title, m.description, m.amount, m.status,
               m.due_date, m.completed_date, m.created_at, m.updated_at
        FROM milestones m
        JOIN contracts c ON c.id = m.contract_id
        WHERE c.client_id = $1 OR c.freelancer_id = $1
        ORDER BY m.due_date ASC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMilestones(rows)
}

// UpdateStatus moves a milestone to a new status. Completing a milestone also
// stamps completed_date.
func (r *MilestoneRepository) UpdateStatus(ctx context.Context, id int, status model.MilestoneStatus) error {
	defer observe("update", "milestones")()
	if status == model.MilestoneCompleted {
		query := `UPDATE milestones SET status = $1, completed_date = NOW(), updated_at = NOW() WHERE id = $2`
		_, err := r.db.Exec(ctx, query, status, id)
		return err
	}
	query := `UPDATE milestones SET status = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

// ListOverdueCandidates returns unfinished milestones whose due date passed
// before the cutoff.
func (r *MilestoneRepository) ListOverdueCandidates(ctx context.Context, cutoff time.Time) ([]model.Milestone, error) {
	defer observe("select", "milestones")()
	query := `SELECT ` + milestoneColumns + ` FROM milestones
        WHERE due_date < $1 AND status IN ($2, $3)`
	rows, err := r.db.Query(ctx, query, cutoff, model.MilestoneNotStarted, model.MilestoneInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMilestones(rows)
}

// CountPendingPaymentsByUser counts a user's milestones awaiting payment.
func (r *MilestoneRepository) CountPendingPaymentsByUser(ctx context.Context, userID int) (int, error) {
	defer observe("select", "milestones")()
	query := `
        SELECT COUNT(*)
        FROM milestones m
        JOIN contracts c ON c.id = m.contract_id
        WHERE (c.client_id = $1 OR c.freelancer_id = $1) AND m.status IN ($2, $3)
    `
	var count int
	err := r.db.QueryRow(ctx, query, userID, model.MilestonePendingReview, model.MilestoneReadyForPayment).Scan(&count)
	return count, err
}

// SumEarnedByUser totals the amounts of a user's completed milestones.
func (r *MilestoneRepository) SumEarnedByUser(ctx context.Context, userID int) (float64, error) {
	defer observe("select", "milestones")()
	query := `
        SELECT COALESCE(SUM(m.amount), 0)
        FROM milestones m
        JOIN contracts c ON c.id = m.contract_id
        WHERE (c.client_id = $1 OR c.freelancer_id = $1) AND m.status = $2
    `
	var total float64
	err := r.db.QueryRow(ctx, query, userID, model.MilestoneCompleted).Scan(&total)
	return total, err
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMilestones(rows rowScanner) ([]model.Milestone, error) {
	var milestones []model.Milestone
	for rows.Next() {
		var m model.Milestone
		if err := rows.Scan(
			&m.ID, &m.ContractID, &m.Title, &m.Description, &m.Amount, &m.Status,
			&m.DueDate, &m.CompletedDate, &m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}
