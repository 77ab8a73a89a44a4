package service

import (
	"context"

	"formconsult/cmd/internal/domain/entity"
	"formconsult/cmd/internal/utils"
	"formconsult/cmd/internal/utils/apierror"
	"formconsult/cmd/internal/utils/validators"

	"github.com/labstack/gommon/log"
)

const (
	ActionAccept = "accept"
	ActionCancel = "cancel"
	ActionAssign = "assign"
)

var actionStatuses = map[string]entity.Status{
	ActionAccept: entity.StatusConfirmed,
	ActionCancel: entity.StatusCanceled,
	ActionAssign: entity.StatusAssigned,
}

// TransitionRequest moves an appointment with either an action keyword or a
// raw status. Action wins when both are given.
type TransitionRequest struct {
	Action         string  `json:"action" validate:"omitempty,oneof=accept cancel assign"`
	Status         string  `json:"status" validate:"omitempty,oneof=PENDING ASSIGNED CONFIRMED REJECTED COMPLETED CANCELED"`
	Notes          *string `json:"notes" validate:"omitempty,max=2000"`
	MeetingURL     *string `json:"meeting_url" validate:"omitempty,url,max=512"`
	ConsultantID   *string `json:"consultant_id" validate:"omitempty,max=36"`
	ActualDuration *int    `json:"actual_duration" validate:"omitempty,gt=0,lte=1440"`
}

type UpdateAppointmentResponse struct {
	Message     string               `json:"message"`
	Appointment *AppointmentResponse `json:"appointment"`
}

// UpdateAppointment applies a lifecycle transition requested by sub.
//
// Authorization and lookups run before any write. The write only succeeds
// while the stored appointment is still the one that was read (same status
// and version), so of two racing updates exactly one wins, including two
// updates that keep the status. Notifications, emails and events run after
// the write and never change the outcome.
func (a *DefaultAppointmentService) UpdateAppointment(ctx context.Context, id, sub string, req *TransitionRequest) (*UpdateAppointmentResponse, apierror.ErrorResponse) {
	actor, apierr := fetchActor(ctx, a.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}

	appt, apierr := a.fetchAppointment(ctx, id)
	if apierr != nil {
		return nil, apierr
	}

	if !CanTransition(actor, appt) {
		return nil, apierror.ForbiddenError
	}

	utils.Sanitize(req)
	if valerr := validators.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	target, apierr := resolveTarget(req)
	if apierr != nil {
		return nil, apierr
	}

	if !appt.Status.CanTransitionTo(target) {
		return nil, apierror.NewInvalidTransitionError(string(appt.Status), string(target))
	}

	consultant, apierr := a.resolveConsultant(ctx, actor, req.ConsultantID)
	if apierr != nil {
		return nil, apierr
	}

	if target == entity.StatusConfirmed && consultant == nil && !appt.HasConsultant() {
		return nil, apierror.NewValidationError("consultant_id", "A consultant must be assigned before the appointment is confirmed")
	}

	if target == entity.StatusCompleted && req.ActualDuration == nil {
		return nil, apierror.NewValidationError("actual_duration", "Actual duration is required to complete an appointment")
	}

	now := a.Now()
	next := *appt
	next.Status = target
	next.UpdatedAt = now
	next.Version = appt.Version + 1
	if req.MeetingURL != nil {
		next.MeetingURL = req.MeetingURL
	}
	if req.Notes != nil {
		next.Notes = req.Notes
	}
	if consultant != nil {
		next.AssignedConsultantID = &consultant.ID
		next.Consultant = consultant
	}
	if target == entity.StatusCompleted {
		next.Duration = req.ActualDuration
		next.ActualDuration = req.ActualDuration
		next.CompletedAt = &now
	}

	patch := map[string]any{
		"status":                 next.Status,
		"meeting_url":            next.MeetingURL,
		"notes":                  next.Notes,
		"assigned_consultant_id": next.AssignedConsultantID,
		"duration":               next.Duration,
		"actual_duration":        next.ActualDuration,
		"completed_at":           next.CompletedAt,
		"updated_at":             next.UpdatedAt,
	}

	updated, err := a.AppointmentRepo.UpdateIfUnchanged(ctx, appt.ID, appt.Status, appt.Version, patch)
	if err != nil {
		log.Errorf("failed to update appointment %s (%s -> %s): %v", appt.ID, appt.Status, target, err)
		return nil, apierror.InternalServerError
	}

	if !updated {
		return nil, apierror.ConcurrentUpdateError
	}

	consultantChanged := consultant != nil && !appt.IsAssignedTo(consultant.ID)
	if next.Status != appt.Status || (next.Status == entity.StatusAssigned && consultantChanged) {
		a.Effects.Apply(ctx, Transition{
			Appointment: &next,
			Previous:    appt.Status,
			Actor:       actor,
			Reason:      req.Notes,
			OccurredAt:  now,
		})
	}

	return &UpdateAppointmentResponse{
		Message:     "Appointment updated",
		Appointment: toAppointmentResponse(&next),
	}, nil
}

func resolveTarget(req *TransitionRequest) (entity.Status, apierror.ErrorResponse) {
	if req.Action != "" {
		status, ok := actionStatuses[req.Action]
		if !ok {
			return "", apierror.NewValidationError("action", "Unknown action '"+req.Action+"'")
		}
		return status, nil
	}

	if req.Status != "" {
		status := entity.Status(req.Status)
		if !status.IsValid() {
			return "", apierror.NewValidationError("status", "Unknown status '"+req.Status+"'")
		}
		return status, nil
	}

	return "", apierror.NewValidationError("status", "Either action or status is required")
}

// resolveConsultant checks a consultant assignment. Only a super admin may
// assign, and the target must be an existing CONSULTANT.
func (a *DefaultAppointmentService) resolveConsultant(ctx context.Context, actor *entity.User, consultantID *string) (*entity.User, apierror.ErrorResponse) {
	if consultantID == nil {
		return nil, nil
	}

	if actor.Role != entity.RoleSuperAdmin {
		return nil, apierror.NewValidationError("consultant_id", "Only a super admin can assign a consultant")
	}

	consultant, err := a.UserRepo.FindByID(ctx, *consultantID)
	if err != nil {
		log.Errorf("failed to find consultant %s: %v", *consultantID, err)
		return nil, apierror.InternalServerError
	}

	if consultant == nil || consultant.Role != entity.RoleConsultant {
		return nil, apierror.ConsultantNotFound
	}
	return consultant, nil
}
