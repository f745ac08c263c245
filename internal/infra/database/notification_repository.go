package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/xavierca1/dreamstudio-crm/internal/entity"
)

type NotificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, content, type, is_read, client_lead_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		n.ID, n.UserID, n.Content, n.Type, n.IsRead, n.ClientLeadID, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByUser returns the user's notifications plus broadcasts, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]entity.Notification, error) {
	w := &whereBuilder{}
	w.add("(user_id = ? OR user_id IS NULL)", userID)
	if unreadOnly {
		w.add("is_read = FALSE")
	}

	query := `SELECT id, user_id, content, type, is_read, client_lead_id, created_at FROM notifications` +
		w.String() + ` ORDER BY created_at DESC LIMIT ` + w.next(limit)

	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := []entity.Notification{}
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Content, &n.Type, &n.IsRead, &n.ClientLeadID, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id string) (bool, error) {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("mark notification %s read: %w", id, err)
	}
	n, err := res.RowsAffected()
	return n == 1, err
}
