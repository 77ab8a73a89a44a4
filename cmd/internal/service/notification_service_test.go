package service

import (
	"context"
	"encoding/json"
	"testing"

	"formconsult/cmd/internal/domain/database/repository"
	"formconsult/cmd/internal/utils/apierror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_InboxFlow(t *testing.T) {
	t.Parallel()

	h := newHarness(t)
	svc := NewNotificationService(repository.NewNotificationRepository(h.db), h.users)
	ctx := context.Background()

	require.NoError(t, svc.Notify(ctx, NotificationInput{
		UserID:  "u1",
		Type:    TypeConsultationConfirmed,
		Title:   "Consultation confirmée",
		Message: "Votre consultation a été confirmée.",
		Data:    map[string]any{"appointmentId": "a1"},
	}))
	require.NoError(t, svc.Notify(ctx, NotificationInput{
		UserID:  "u1",
		Type:    TypeConsultationCompleted,
		Title:   "Consultation terminée",
		Message: "Donnez-nous votre avis !",
	}))
	require.NoError(t, svc.Notify(ctx, NotificationInput{UserID: "u2", Type: TypeConsultationAssigned, Title: "x", Message: "y"}))

	inbox, apierr := svc.GetNotifications(ctx, "sub-u1", false)
	require.Nil(t, apierr)
	require.Len(t, inbox, 2)
	for _, n := range inbox {
		assert.False(t, n.IsRead)
	}

	var withData *NotificationResponse
	for _, n := range inbox {
		if n.Type == TypeConsultationConfirmed {
			withData = n
		}
	}
	require.NotNil(t, withData)
	var data map[string]string
	require.NoError(t, json.Unmarshal(withData.Data, &data))
	assert.Equal(t, "a1", data["appointmentId"])

	// Someone else's notification cannot be marked.
	otherInbox, apierr := svc.GetNotifications(ctx, "sub-u2", false)
	require.Nil(t, apierr)
	require.Len(t, otherInbox, 1)
	assert.Equal(t, apierror.NotFoundError, svc.MarkRead(ctx, otherInbox[0].ID, "sub-u1"))

	require.Nil(t, svc.MarkRead(ctx, withData.ID, "sub-u1"))
	unread, apierr := svc.GetNotifications(ctx, "sub-u1", true)
	require.Nil(t, apierr)
	require.Len(t, unread, 1)
	assert.Equal(t, TypeConsultationCompleted, unread[0].Type)

	res, apierr := svc.MarkAllRead(ctx, "sub-u1")
	require.Nil(t, apierr)
	assert.Equal(t, int64(1), res.Updated)

	unread, apierr = svc.GetNotifications(ctx, "sub-u1", true)
	require.Nil(t, apierr)
	assert.Empty(t, unread)

	_, apierr = svc.GetNotifications(ctx, "sub-ghost", false)
	assert.Equal(t, apierror.UnknownUserError, apierr)
}
