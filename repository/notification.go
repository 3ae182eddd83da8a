package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gigbridge/backend/models"
	"gorm.io/gorm"
)

// Notification operations for the GORM store.

func (r *GORMStore) CreateNotification(ctx context.Context, notification *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		slog.Error("Failed to create notification", "error", err, "recipient_id", notification.RecipientID)
		return fmt.Errorf("failed to create notification: %w", err)
	}
	slog.Info("Notification created", "notification_id", notification.ID, "recipient_id", notification.RecipientID, "type", notification.Type)
	return nil
}

// GetDueNotifications returns every unsent notification whose scheduled time
// has passed. Immediate notifications carry a nil ScheduledFor and are
// published at creation time, so they are excluded here.
func (r *GORMStore) GetDueNotifications(ctx context.Context, now time.Time) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("is_sent = ? AND scheduled_for IS NOT NULL AND scheduled_for <= ?", false, now).
		Order("scheduled_for ASC").
		Find(&notifications).Error
	if err != nil {
		slog.Error("Failed to get due notifications", "error", err)
		return nil, fmt.Errorf("failed to get due notifications: %w", err)
	}
	return notifications, nil
}

func (r *GORMStore) MarkNotificationsSent(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id IN ?", ids).
		Update("is_sent", true).Error
	if err != nil {
		slog.Error("Failed to mark notifications sent", "error", err, "count", len(ids))
		return fmt.Errorf("failed to mark notifications sent: %w", err)
	}
	return nil
}

func (r *GORMStore) ListNotifications(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	var notifications []models.Notification
	err := r.db.WithContext(ctx).
		Where("recipient_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&notifications).Error
	if err != nil {
		slog.Error("Failed to list notifications", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (r *GORMStore) MarkNotificationRead(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		slog.Error("Failed to mark notification read", "error", result.Error, "notification_id", id, "user_id", userID)
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	slog.Info("Notification marked read", "notification_id", id, "user_id", userID)
	return nil
}
