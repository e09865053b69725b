package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"cryptohustle/internal/domain"
	"cryptohustle/internal/infra"
)

// NotificationRepositoryImpl implements the NotificationRepository interface
type NotificationRepositoryImpl struct {
	db *infra.Database
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *infra.Database) domain.NotificationRepository {
	return &NotificationRepositoryImpl{db: db}
}

// Add appends an inbox event
func (r *NotificationRepositoryImpl) Add(ctx context.Context, n *domain.Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO notifications (id, user_id, type, amount, bonus_type, from_user, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7)
	`, n.ID, n.UserID, n.Type, n.Amount, n.BonusType, n.FromUser, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add notification: %w", err)
	}
	return nil
}

// ListByUser lists a user's inbox events, newest first
func (r *NotificationRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domain.Notification, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, type, amount, COALESCE(bonus_type, ''), from_user, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		n := &domain.Notification{}
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Amount, &n.BonusType, &n.FromUser, &n.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}
