package service

import (
	"context"
	"fmt"
	"time"

	"formconsult/cmd/internal/domain/entity"
	"formconsult/cmd/internal/integration/rabbitmq"
	"formconsult/cmd/internal/utils"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

// Notification type tags.
const (
	TypeConsultationAssigned  = "consultation_assigned"
	TypeConsultationConfirmed = "consultation_confirmed"
	TypeConsultationRejected  = "consultation_rejected"
	TypeConsultationCanceled  = "consultation_canceled"
	TypeConsultationCompleted = "consultation_completed"
)

const (
	fallbackAdminName    = "Administrateur"
	fallbackCompanyName  = "Entreprise"
	fallbackEmployeeName = "Employé"

	maxConcurrentEffects = 8
)

type NotificationInput struct {
	UserID  string
	Type    string
	Title   string
	Message string
	Data    map[string]any
}

type NotificationSink interface {
	Notify(ctx context.Context, n NotificationInput) error
}

type EmailSender interface {
	SendApproved(ctx context.Context, to, name, title, company, adminName string) error
	SendRejected(ctx context.Context, to, name, title, company, adminName string, reason *string) error
}

type EventPublisher interface {
	PublishAppointmentEvent(ctx context.Context, event rabbitmq.AppointmentEvent) error
}

type ErrorReporter interface {
	Report(ctx context.Context, err error, extras map[string]any)
}

type RecipientRepository interface {
	FindByCompanyAndRole(ctx context.Context, companyID string, role entity.Role) ([]*entity.User, error)
	FindAllByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
}

// Transition describes a committed appointment change.
type Transition struct {
	Appointment *entity.Appointment
	Previous    entity.Status
	Actor       *entity.User
	Reason      *string
	OccurredAt  int64
}

// TransitionEffects runs the notifications, emails and events that follow a
// committed transition. Every effect is independent: a failure is logged and
// reported, never returned.
type TransitionEffects struct {
	Recipients    RecipientRepository
	Notifications NotificationSink
	Emails        EmailSender
	Events        EventPublisher
	Reporter      ErrorReporter
	CompanyNames  *CompanyNameCache
	ConsumedHours ConsumedHoursPolicy
	Timeout       time.Duration
}

type effect struct {
	name      string
	recipient string
	run       func(ctx context.Context) error
}

// Apply blocks until every effect finished or timed out.
func (e *TransitionEffects) Apply(ctx context.Context, t Transition) {
	ctx = context.WithoutCancel(ctx)
	effects := e.plan(ctx, t)

	var g errgroup.Group
	g.SetLimit(maxConcurrentEffects)
	for _, eff := range effects {
		g.Go(func() error {
			runCtx, cancel := context.WithTimeout(ctx, e.Timeout)
			defer cancel()
			if err := eff.run(runCtx); err != nil {
				e.fail(ctx, t.Appointment.ID, eff.name, eff.recipient, err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (e *TransitionEffects) plan(ctx context.Context, t Transition) []effect {
	appt := t.Appointment
	employee := appt.Requester.DisplayName(fallbackEmployeeName)

	var effects []effect
	switch appt.Status {
	case entity.StatusAssigned:
		effects = append(effects, e.notify(NotificationInput{
			UserID:  appt.UserID,
			Type:    TypeConsultationAssigned,
			Title:   "Consultant assigné",
			Message: fmt.Sprintf("Un consultant a été assigné à votre demande « %s ».", appt.Title),
			Data:    map[string]any{"appointmentId": appt.ID},
		}))
		if appt.HasConsultant() {
			effects = append(effects, e.notify(NotificationInput{
				UserID:  *appt.AssignedConsultantID,
				Type:    TypeConsultationAssigned,
				Title:   "Nouvelle consultation assignée",
				Message: fmt.Sprintf("La consultation « %s » demandée par %s vous a été assignée.", appt.Title, employee),
				Data:    map[string]any{"appointmentId": appt.ID, "employeeName": employee},
			}))
		}
		for _, admin := range e.companyAdmins(ctx, appt) {
			effects = append(effects, e.notify(NotificationInput{
				UserID:  admin.ID,
				Type:    TypeConsultationAssigned,
				Title:   "Consultant assigné",
				Message: fmt.Sprintf("Un consultant a été assigné à la demande de %s.", employee),
				Data:    map[string]any{"appointmentId": appt.ID, "employeeName": employee},
			}))
		}

	case entity.StatusConfirmed:
		effects = append(effects, e.notify(NotificationInput{
			UserID:  appt.UserID,
			Type:    TypeConsultationConfirmed,
			Title:   "Consultation confirmée",
			Message: fmt.Sprintf("Votre consultation « %s » a été confirmée.", appt.Title),
			Data:    map[string]any{"appointmentId": appt.ID},
		}))
		effects = append(effects, e.approvedEmail(ctx, t))

	case entity.StatusRejected:
		effects = append(effects, e.notify(NotificationInput{
			UserID:  appt.UserID,
			Type:    TypeConsultationRejected,
			Title:   "Consultation reportée",
			Message: fmt.Sprintf("Votre consultation « %s » a été reportée, une réaffectation est en cours.", appt.Title),
			Data:    map[string]any{"appointmentId": appt.ID},
		}))
		for _, admin := range e.companyAdmins(ctx, appt) {
			effects = append(effects, e.notify(NotificationInput{
				UserID:  admin.ID,
				Type:    TypeConsultationRejected,
				Title:   "Consultation à réaffecter",
				Message: fmt.Sprintf("La consultation de %s a été refusée et doit être réaffectée.", employee),
				Data:    map[string]any{"appointmentId": appt.ID, "employeeName": employee},
			}))
		}
		company := e.companyName(ctx, appt)
		for _, sa := range e.superAdmins(ctx, appt) {
			effects = append(effects, e.notify(NotificationInput{
				UserID:  sa.ID,
				Type:    TypeConsultationRejected,
				Title:   "Réaffectation nécessaire",
				Message: fmt.Sprintf("La consultation « %s » de %s (%s) doit être réaffectée.", appt.Title, employee, company),
				Data:    map[string]any{"appointmentId": appt.ID, "employeeName": employee, "companyName": company},
			}))
		}

	case entity.StatusCanceled:
		effects = append(effects, e.notify(NotificationInput{
			UserID:  appt.UserID,
			Type:    TypeConsultationCanceled,
			Title:   "Demande non acceptée",
			Message: fmt.Sprintf("Votre demande de consultation « %s » n'a pas pu être acceptée.", appt.Title),
			Data:    map[string]any{"appointmentId": appt.ID},
		}))
		effects = append(effects, e.rejectedEmail(ctx, t))

	case entity.StatusCompleted:
		duration := 0
		if appt.Duration != nil {
			duration = *appt.Duration
		}
		effects = append(effects, e.notify(NotificationInput{
			UserID:  appt.UserID,
			Type:    TypeConsultationCompleted,
			Title:   "Consultation terminée",
			Message: fmt.Sprintf("Votre consultation « %s » est terminée. Donnez-nous votre avis !", appt.Title),
			Data:    map[string]any{"appointmentId": appt.ID},
		}))
		for _, admin := range e.companyAdmins(ctx, appt) {
			effects = append(effects, e.notify(NotificationInput{
				UserID:  admin.ID,
				Type:    TypeConsultationCompleted,
				Title:   "Session terminée",
				Message: fmt.Sprintf("La session de %s est terminée (durée : %d min).", employee, duration),
				Data:    map[string]any{"appointmentId": appt.ID, "employeeName": employee, "duration": duration},
			}))
		}
		company := e.companyName(ctx, appt)
		for _, sa := range e.superAdmins(ctx, appt) {
			effects = append(effects, e.notify(NotificationInput{
				UserID:  sa.ID,
				Type:    TypeConsultationCompleted,
				Title:   "Session terminée",
				Message: fmt.Sprintf("Session terminée pour l'entreprise %s (durée : %d min).", company, duration),
				Data:    map[string]any{"appointmentId": appt.ID, "companyName": company, "duration": duration},
			}))
		}
		effects = append(effects, effect{
			name:      "record consumed consulting hours",
			recipient: appt.CompanyID,
			run: func(ctx context.Context) error {
				return e.ConsumedHours.OnCompleted(ctx, appt)
			},
		})
	}

	return append(effects, e.publish(t))
}

func (e *TransitionEffects) notify(n NotificationInput) effect {
	return effect{
		name:      "create " + n.Type + " notification",
		recipient: n.UserID,
		run: func(ctx context.Context) error {
			return e.Notifications.Notify(ctx, n)
		},
	}
}

func (e *TransitionEffects) approvedEmail(ctx context.Context, t Transition) effect {
	appt := t.Appointment
	company := e.companyName(ctx, appt)
	return effect{
		name:      "send approved email",
		recipient: appt.UserID,
		run: func(ctx context.Context) error {
			return e.Emails.SendApproved(ctx, requesterEmail(appt), appt.Requester.DisplayName(fallbackEmployeeName),
				appt.Title, company, t.Actor.DisplayName(fallbackAdminName))
		},
	}
}

func (e *TransitionEffects) rejectedEmail(ctx context.Context, t Transition) effect {
	appt := t.Appointment
	company := e.companyName(ctx, appt)
	return effect{
		name:      "send rejected email",
		recipient: appt.UserID,
		run: func(ctx context.Context) error {
			return e.Emails.SendRejected(ctx, requesterEmail(appt), appt.Requester.DisplayName(fallbackEmployeeName),
				appt.Title, company, t.Actor.DisplayName(fallbackAdminName), t.Reason)
		},
	}
}

func (e *TransitionEffects) publish(t Transition) effect {
	event := rabbitmq.AppointmentEvent{
		AppointmentID:  t.Appointment.ID,
		PreviousStatus: string(t.Previous),
		Status:         string(t.Appointment.Status),
		OccurredAt:     utils.FormatEpoch(t.OccurredAt),
	}
	if t.Actor != nil {
		event.ActorID = t.Actor.ID
	}
	return effect{
		name:      "publish lifecycle event",
		recipient: event.RoutingKey(),
		run: func(ctx context.Context) error {
			return e.Events.PublishAppointmentEvent(ctx, event)
		},
	}
}

func (e *TransitionEffects) companyAdmins(ctx context.Context, appt *entity.Appointment) []*entity.User {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	admins, err := e.Recipients.FindByCompanyAndRole(ctx, appt.CompanyID, entity.RoleCompanyAdmin)
	if err != nil {
		e.fail(ctx, appt.ID, "find company admins", appt.CompanyID, err)
		return nil
	}
	return admins
}

func (e *TransitionEffects) superAdmins(ctx context.Context, appt *entity.Appointment) []*entity.User {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	admins, err := e.Recipients.FindAllByRole(ctx, entity.RoleSuperAdmin)
	if err != nil {
		e.fail(ctx, appt.ID, "find super admins", "", err)
		return nil
	}
	return admins
}

func (e *TransitionEffects) companyName(ctx context.Context, appt *entity.Appointment) string {
	ctx, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	name, err := e.CompanyNames.Name(ctx, appt.CompanyID)
	if err != nil {
		e.fail(ctx, appt.ID, "resolve company name", appt.CompanyID, err)
	}
	if name == "" {
		return fallbackCompanyName
	}
	return name
}

func (e *TransitionEffects) fail(ctx context.Context, appointmentID, what, recipient string, err error) {
	log.Errorf("failed to %s for appointment %s (recipient %q): %v", what, appointmentID, recipient, err)
	e.Reporter.Report(ctx, err, map[string]any{
		"appointment_id": appointmentID,
		"effect":         what,
		"recipient":      recipient,
	})
}

func requesterEmail(appt *entity.Appointment) string {
	if appt.Requester == nil {
		return ""
	}
	return appt.Requester.Email
}
