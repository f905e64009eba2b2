package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"contractpay/internal/model"
)

type TemplateRepository struct {
	db *pgxpool.Pool
}

func NewTemplateRepository(db *pgxpool.Pool) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func (r *TemplateRepository) Insert(ctx context.Context, t *model.ContractTemplate) error {
	defer observe("insert", "contract_templates")()
	query := `
        INSERT INTO contract_templates (user_id, title, description, content, category, is_public, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at
    `
	return r.db.QueryRow(ctx, query,
		t.UserID,
		t.Title,
		t.Description,
		t.Content,
		t.Category,
		t.IsPublic,
	).Scan(&t.ID, &t.CreatedAt)
}

// ListVisible returns a user's own templates plus all public ones.
func (r *TemplateRepository) ListVisible(ctx context.Context, userID int) ([]model.ContractTemplate, error) {
	defer observe("select", "contract_templates")()
	query := `
        SELECT id, user_id, title, description, content, category, is_public, created_at
        FROM contract_templates
        WHERE user_id = $1 OR is_public = TRUE
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []model.ContractTemplate
	for rows.Next() {
		var t model.ContractTemplate
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.Title, &t.Description, &t.Content,
			&t.Category, &t.IsPublic, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (r *TemplateRepository) Delete(ctx context.Context, id int) error {
	defer observe("delete", "contract_templates")()
	_, err := r.db.Exec(ctx, `DELETE FROM contract_templates WHERE id = $1`, id)
	return err
}

// CountByUser counts the templates a user owns.
func (r *TemplateRepository) CountByUser(ctx context.Context, userID int) (int, error) {
	defer observe("select", "contract_templates")()
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM contract_templates WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}
