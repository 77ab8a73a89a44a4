package service

import (
	"context"
	"encoding/json"
	"fmt"

	"formconsult/cmd/internal/domain/entity"
	"formconsult/cmd/internal/utils"
	"formconsult/cmd/internal/utils/apierror"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"gorm.io/datatypes"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	FindByUserID(ctx context.Context, userID string, unreadOnly bool) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

type NotificationResponse struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt string          `json:"created_at"`
}

type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}

type DefaultNotificationService struct {
	NotificationRepo NotificationRepository
	UserRepo         UserRepository
}

func NewNotificationService(notifRepo NotificationRepository, userRepo UserRepository) *DefaultNotificationService {
	return &DefaultNotificationService{NotificationRepo: notifRepo, UserRepo: userRepo}
}

// Notify stores a notification for later retrieval by its recipient.
func (n *DefaultNotificationService) Notify(ctx context.Context, in NotificationInput) error {
	var data datatypes.JSON
	if len(in.Data) > 0 {
		raw, err := json.Marshal(in.Data)
		if err != nil {
			return fmt.Errorf("marshal notification data: %w", err)
		}
		data = raw
	}

	notification := &entity.Notification{
		ID:      uuid.NewString(),
		UserID:  in.UserID,
		Type:    in.Type,
		Title:   in.Title,
		Message: in.Message,
		Data:    data,
	}
	if err := n.NotificationRepo.Create(ctx, notification); err != nil {
		return fmt.Errorf("create notification for %s: %w", in.UserID, err)
	}
	return nil
}

func (n *DefaultNotificationService) GetNotifications(ctx context.Context, sub string, unreadOnly bool) ([]*NotificationResponse, apierror.ErrorResponse) {
	caller, apierr := fetchActor(ctx, n.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}

	notifs, err := n.NotificationRepo.FindByUserID(ctx, caller.ID, unreadOnly)
	if err != nil {
		log.Errorf("failed to find notifications for user %s: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*NotificationResponse, len(notifs))
	for i, notif := range notifs {
		resp[i] = toNotificationResponse(notif)
	}
	return resp, nil
}

func (n *DefaultNotificationService) MarkRead(ctx context.Context, id, sub string) apierror.ErrorResponse {
	caller, apierr := fetchActor(ctx, n.UserRepo, sub)
	if apierr != nil {
		return apierr
	}

	found, err := n.NotificationRepo.MarkRead(ctx, id, caller.ID)
	if err != nil {
		log.Errorf("failed to mark notification %s as read: %v", id, err)
		return apierror.InternalServerError
	}
	if !found {
		return apierror.NotFoundError
	}
	return nil
}

func (n *DefaultNotificationService) MarkAllRead(ctx context.Context, sub string) (*MarkAllReadResponse, apierror.ErrorResponse) {
	caller, apierr := fetchActor(ctx, n.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}

	updated, err := n.NotificationRepo.MarkAllRead(ctx, caller.ID)
	if err != nil {
		log.Errorf("failed to mark all notifications of user %s as read: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}
	return &MarkAllReadResponse{Updated: updated}, nil
}

func toNotificationResponse(notif *entity.Notification) *NotificationResponse {
	return &NotificationResponse{
		ID:        notif.ID,
		Type:      notif.Type,
		Title:     notif.Title,
		Message:   notif.Message,
		Data:      json.RawMessage(notif.Data),
		IsRead:    notif.IsRead,
		CreatedAt: utils.FormatEpoch(notif.CreatedAt),
	}
}
