package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"contractpay/internal/model"
)

type NotificationLogRepository struct {
	db *pgxpool.Pool
}

func NewNotificationLogRepository(db *pgxpool.Pool) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

func (r *NotificationLogRepository) Insert(ctx context.Context, log *model.NotificationLog) error {
	defer observe("insert", "notifications_log")()
	query := `
        INSERT INTO notifications_log (user_id, contract_id, message, created_at)
        VALUES ($1, $2, $3, NOW())
    `
	_, err := r.db.Exec(ctx, query, log.UserID, log.ContractID, log.Message)
	return err
}

// ListByUser returns a user's most recent notifications.
func (r *NotificationLogRepository) ListByUser(ctx context.Context, userID, limit int) ([]model.NotificationLog, error) {
	defer observe("select", "notifications_log")()
	query := `
        SELECT id, user_id, contract_id, message, created_at
        FROM notifications_log
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []model.NotificationLog
	for rows.Next() {
		var l model.NotificationLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.ContractID, &l.Message, &l.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
