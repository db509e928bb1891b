package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ArmanAmreliya/gearguard-odoo-maintenance/internal/models"
)

// NotificationRepository provides database access for in-app notifications
// and per-user preferences.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

const notificationColumns = `id, user_id, type, title, message, related_request_id, related_equipment_id, read, read_at, created_at`

// ListByUser returns a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	var notifications []models.Notification
	if err := r.db.SelectContext(ctx, &notifications, query, userID); err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// CountUnread returns the unread badge count for a user.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`
	var count int
	if err := r.db.GetContext(ctx, &count, query, userID); err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

// Create inserts a notification.
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO notifications (id, user_id, type, title, message, related_request_id, related_equipment_id, read, read_at, created_at) VALUES (:id, :user_id, :type, :title, :message, :related_request_id, :related_equipment_id, :read, :read_at, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, n); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

// ExistsSince reports whether a notification of the given type for the same
// request was already created for the user after the cutoff. The overdue
// scanner uses it to avoid duplicate alerts.
func (r *NotificationRepository) ExistsSince(ctx context.Context, userID string, nType models.NotificationType, requestID string, since time.Time) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM notifications WHERE user_id = $1 AND type = $2 AND related_request_id = $3 AND created_at >= $4)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, userID, nType, requestID, since); err != nil {
		return false, fmt.Errorf("notification exists since: %w", err)
	}
	return exists, nil
}

// MarkRead marks one notification read, scoped to its owner.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) error {
	const query = `UPDATE notifications SET read = TRUE, read_at = $3 WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID, at)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkAllRead marks every unread notification read for a user.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) error {
	const query = `UPDATE notifications SET read = TRUE, read_at = $2 WHERE user_id = $1 AND read = FALSE`
	if _, err := r.db.ExecContext(ctx, query, userID, at); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

// Delete removes a notification, scoped to its owner.
func (r *NotificationRepository) Delete(ctx context.Context, id, userID string) error {
	const query = `DELETE FROM notifications WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// FindPreference returns the stored preference row for a user.
func (r *NotificationRepository) FindPreference(ctx context.Context, userID string) (*models.NotificationPreference, error) {
	const query = `SELECT user_id, alert_overdue, alert_due_soon, alert_complete, alert_assigned, in_app, updated_at FROM notification_preferences WHERE user_id = $1 LIMIT 1`
	var pref models.NotificationPreference
	if err := r.db.GetContext(ctx, &pref, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find notification preference: %w", err)
	}
	return &pref, nil
}

// UpsertPreference inserts or replaces the preference row for a user.
func (r *NotificationRepository) UpsertPreference(ctx context.Context, pref *models.NotificationPreference) error {
	pref.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO notification_preferences (user_id, alert_overdue, alert_due_soon, alert_complete, alert_assigned, in_app, updated_at)
	VALUES (:user_id, :alert_overdue, :alert_due_soon, :alert_complete, :alert_assigned, :in_app, :updated_at)
	ON CONFLICT (user_id) DO UPDATE SET alert_overdue = EXCLUDED.alert_overdue, alert_due_soon = EXCLUDED.alert_due_soon, alert_complete = EXCLUDED.alert_complete, alert_assigned = EXCLUDED.alert_assigned, in_app = EXCLUDED.in_app, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, pref); err != nil {
		return fmt.Errorf("upsert notification preference: %w", err)
	}
	return nil
}
