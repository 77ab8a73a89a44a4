package service

import (
	"context"
	"time"

	"formconsult/cmd/internal/domain/database/repository"
	"formconsult/cmd/internal/domain/entity"
	"formconsult/cmd/internal/utils"
	"formconsult/cmd/internal/utils/apierror"
	"formconsult/cmd/internal/utils/validators"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
)

// Slot length shown on the calendar while the real duration is unknown.
const defaultDurationMinutes = 60

type AppointmentRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Appointment, error)
	FindAll(ctx context.Context, filter repository.AppointmentFilter) ([]*entity.Appointment, error)
	FindMonthAppointments(ctx context.Context, filter repository.AppointmentFilter, monthStart, monthEnd int64) ([]*entity.Appointment, error)
	Save(ctx context.Context, appointment *entity.Appointment) error
	UpdateIfUnchanged(ctx context.Context, id string, status entity.Status, version int64, patch map[string]any) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type Effects interface {
	Apply(ctx context.Context, t Transition)
}

type AppointmentRequest struct {
	Title       string  `json:"title" validate:"required,notblank,max=128"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	ScheduledAt string  `json:"scheduled_at" validate:"required,iso8601"`
	Duration    *int    `json:"duration" validate:"omitempty,gt=0,lte=480"`
}

type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type CompanySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type AppointmentResponse struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	Description          *string         `json:"description"`
	Status               string          `json:"status"`
	ScheduledAt          string          `json:"scheduled_at"`
	Duration             *int            `json:"duration"`
	MeetingURL           *string         `json:"meeting_url"`
	Notes                *string         `json:"notes"`
	CompletedAt          *string         `json:"completed_at"`
	ActualDuration       *int            `json:"actual_duration"`
	UserID               string          `json:"user_id"`
	AssignedConsultantID *string         `json:"assigned_consultant_id"`
	CompanyID            string          `json:"company_id"`
	Requester            *UserSummary    `json:"requester,omitempty"`
	Consultant           *UserSummary    `json:"consultant,omitempty"`
	Company              *CompanySummary `json:"company,omitempty"`
	CreatedAt            string          `json:"created_at"`
	UpdatedAt            string          `json:"updated_at"`
}

type ScheduledDay struct {
	BeginsAt string `json:"begins_at"`
	EndsAt   string `json:"ends_at"`
	Status   string `json:"status"`
}

type CalendarResponse struct {
	ScheduledDays []*ScheduledDay `json:"scheduled_days"`
}

type DefaultAppointmentService struct {
	AppointmentRepo AppointmentRepository
	UserRepo        UserRepository
	Effects         Effects
	Now             func() int64
}

func NewAppointmentService(apptRepo AppointmentRepository, userRepo UserRepository, effects Effects) *DefaultAppointmentService {
	return &DefaultAppointmentService{AppointmentRepo: apptRepo, UserRepo: userRepo, Effects: effects, Now: utils.NowUTC}
}

func (a *DefaultAppointmentService) GetAppointment(ctx context.Context, id, sub string) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := fetchActor(ctx, a.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}

	appt, apierr := a.fetchAppointment(ctx, id)
	if apierr != nil {
		return nil, apierr
	}

	if !CanRead(caller, appt) {
		return nil, apierror.ForbiddenError
	}
	return toAppointmentResponse(appt), nil
}

// GetAppointments lists the appointments visible to the caller, newest first.
func (a *DefaultAppointmentService) GetAppointments(ctx context.Context, sub, rawStatus string) ([]*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := fetchActor(ctx, a.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}

	filter, apierr := visibilityFilter(caller)
	if apierr != nil {
		return nil, apierr
	}

	if rawStatus != "" {
		status := entity.Status(rawStatus)
		if !status.IsValid() {
			return nil, apierror.NewValidationError("status", "Unknown status '"+rawStatus+"'")
		}
		filter.Status = status
	}

	appts, err := a.AppointmentRepo.FindAll(ctx, filter)
	if err != nil {
		log.Errorf("failed to find appointments for user %s: %v", caller.ID, err)
		return nil, apierror.InternalServerError
	}

	response := make([]*AppointmentResponse, len(appts))
	for i, appt := range appts {
		response[i] = toAppointmentResponse(appt)
	}
	return response, nil
}

// CreateAppointment files a new PENDING consultation request for an employee.
func (a *DefaultAppointmentService) CreateAppointment(ctx context.Context, req *AppointmentRequest, sub string) (*AppointmentResponse, apierror.ErrorResponse) {
	caller, apierr := fetchActor(ctx, a.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}

	if caller.Role != entity.RoleEmployee {
		return nil, apierror.ForbiddenError
	}

	if caller.CompanyID == nil {
		return nil, apierror.NoCompanyError
	}

	utils.Sanitize(req)
	if valerr := validators.Validate.Struct(req); valerr != nil {
		return nil, apierror.FromValidationError(valerr)
	}

	scheduledAt, err := utils.FromEpoch(req.ScheduledAt)
	if err != nil {
		return nil, apierror.MalformedBodyError
	}

	if scheduledAt <= a.Now() {
		return nil, apierror.AppointmentInPastError
	}

	now := a.Now()
	appointment := &entity.Appointment{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      entity.StatusPending,
		ScheduledAt: scheduledAt,
		Duration:    req.Duration,
		UserID:      caller.ID,
		CompanyID:   *caller.CompanyID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = a.AppointmentRepo.Save(ctx, appointment)
	if err != nil {
		log.Errorf("failed to save appointment: %v", err)
		return nil, apierror.InternalServerError
	}

	appointment.Requester = caller
	appointment.Company = caller.Company
	return toAppointmentResponse(appointment), nil
}

// DeleteAppointment permanently removes an appointment. It is not a status
// transition and notifies nobody.
func (a *DefaultAppointmentService) DeleteAppointment(ctx context.Context, id, sub string) apierror.ErrorResponse {
	caller, apierr := fetchActor(ctx, a.UserRepo, sub)
	if apierr != nil {
		return apierr
	}

	appt, apierr := a.fetchAppointment(ctx, id)
	if apierr != nil {
		return apierr
	}

	if !CanDelete(caller, appt) {
		return apierror.ForbiddenError
	}

	deleted, err := a.AppointmentRepo.Delete(ctx, appt.ID)
	if err != nil {
		log.Errorf("failed to delete appointment by id %s: %v", id, err)
		return apierror.InternalServerError
	}

	if !deleted {
		return apierror.AppointmentNotFound
	}
	return nil
}

// GetCalendar returns the live appointments visible to the caller and
// scheduled within [monthStart, monthEnd).
func (a *DefaultAppointmentService) GetCalendar(ctx context.Context, sub string, monthStart, monthEnd int64) (*CalendarResponse, apierror.ErrorResponse) {
	caller, apierr := fetchActor(ctx, a.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}

	filter, apierr := visibilityFilter(caller)
	if apierr != nil {
		return nil, apierr
	}

	appts, err := a.AppointmentRepo.FindMonthAppointments(ctx, filter, monthStart, monthEnd)
	if err != nil {
		log.Errorf("failed to fetch appointments availability [%d - %d]: %v", monthStart, monthEnd, err)
		return nil, apierror.InternalServerError
	}

	schedDays := make([]*ScheduledDay, len(appts))
	for i, appt := range appts {
		schedDays[i] = toScheduledDay(appt)
	}

	calendar := &CalendarResponse{
		ScheduledDays: schedDays,
	}
	return calendar, nil
}

func (a *DefaultAppointmentService) fetchAppointment(ctx context.Context, id string) (*entity.Appointment, apierror.ErrorResponse) {
	appt, err := a.AppointmentRepo.FindByID(ctx, id)
	if err != nil {
		log.Errorf("failed to fetch appointment by id %s: %v", id, err)
		return nil, apierror.InternalServerError
	}

	if appt == nil {
		return nil, apierror.AppointmentNotFound
	}
	return appt, nil
}

// visibilityFilter scopes list queries to what the caller's role may see.
func visibilityFilter(caller *entity.User) (repository.AppointmentFilter, apierror.ErrorResponse) {
	switch caller.Role {
	case entity.RoleSuperAdmin:
		return repository.AppointmentFilter{}, nil
	case entity.RoleCompanyAdmin:
		if caller.CompanyID == nil {
			return repository.AppointmentFilter{}, apierror.NoCompanyError
		}
		return repository.AppointmentFilter{CompanyID: *caller.CompanyID}, nil
	case entity.RoleConsultant:
		return repository.AppointmentFilter{ConsultantID: caller.ID}, nil
	case entity.RoleEmployee:
		return repository.AppointmentFilter{UserID: caller.ID}, nil
	}
	return repository.AppointmentFilter{}, apierror.ForbiddenError
}

func toScheduledDay(appt *entity.Appointment) *ScheduledDay {
	minutes := defaultDurationMinutes
	if appt.Duration != nil && *appt.Duration > 0 {
		minutes = *appt.Duration
	}
	return &ScheduledDay{
		BeginsAt: utils.FormatEpoch(appt.ScheduledAt),
		EndsAt:   utils.FormatEpoch(appt.ScheduledAt + (time.Duration(minutes) * time.Minute).Milliseconds()),
		Status:   string(appt.Status),
	}
}

func toUserSummary(user *entity.User) *UserSummary {
	if user == nil {
		return nil
	}
	return &UserSummary{ID: user.ID, Name: user.Name, Email: user.Email, Role: string(user.Role)}
}

func toCompanySummary(company *entity.Company) *CompanySummary {
	if company == nil {
		return nil
	}
	return &CompanySummary{ID: company.ID, Name: company.Name}
}

func toAppointmentResponse(appt *entity.Appointment) *AppointmentResponse {
	return &AppointmentResponse{
		ID:                   appt.ID,
		Title:                appt.Title,
		Description:          appt.Description,
		Status:               string(appt.Status),
		ScheduledAt:          utils.FormatEpoch(appt.ScheduledAt),
		Duration:             appt.Duration,
		MeetingURL:           appt.MeetingURL,
		Notes:                appt.Notes,
		CompletedAt:          utils.FormatEpochPtr(appt.CompletedAt),
		ActualDuration:       appt.ActualDuration,
		UserID:               appt.UserID,
		AssignedConsultantID: appt.AssignedConsultantID,
		CompanyID:            appt.CompanyID,
		Requester:            toUserSummary(appt.Requester),
		Consultant:           toUserSummary(appt.Consultant),
		Company:              toCompanySummary(appt.Company),
		CreatedAt:            utils.FormatEpoch(appt.CreatedAt),
		UpdatedAt:            utils.FormatEpoch(appt.UpdatedAt),
	}
}
