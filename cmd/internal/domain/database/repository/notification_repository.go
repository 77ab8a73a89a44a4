package repository

import (
	"context"
	"formconsult/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultNotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *DefaultNotificationRepository {
	return &DefaultNotificationRepository{db: db}
}

func (n *DefaultNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	return n.db.WithContext(ctx).Create(notification).Error
}

func (n *DefaultNotificationRepository) FindByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error) {
	var notifications []*entity.Notification
	q := n.db.WithContext(ctx).Where("user_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	err := q.Order("created_at desc").Find(&notifications).Error
	return notifications, err
}

// MarkRead flags one notification of userID as read. It returns false when
// no such notification belongs to the user.
func (n *DefaultNotificationRepository) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	var notification entity.Notification
	res := n.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&notification)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if notification.IsRead {
		return true, nil
	}
	err := n.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
	return err == nil, err
}

func (n *DefaultNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	res := n.db.WithContext(ctx).
		Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	return res.RowsAffected, res.Error
}
