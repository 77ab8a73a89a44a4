package repository

import (
	"context"
	"errors"
	"formconsult/cmd/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AppointmentFilter narrows FindAll. Empty fields are ignored.
type AppointmentFilter struct {
	UserID       string
	ConsultantID string
	CompanyID    string
	Status       entity.Status
}

type DefaultAppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *DefaultAppointmentRepository {
	return &DefaultAppointmentRepository{db: db}
}

func (a *DefaultAppointmentRepository) FindByID(ctx context.Context, id string) (*entity.Appointment, error) {
	var appt entity.Appointment
	err := a.db.WithContext(ctx).
		Preload("Requester").
		Preload("Consultant").
		Preload("Company").
		First(&appt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (a *DefaultAppointmentRepository) FindAll(ctx context.Context, filter AppointmentFilter) ([]*entity.Appointment, error) {
	var appts []*entity.Appointment
	err := scoped(a.db.WithContext(ctx), filter).
		Preload("Requester").
		Preload("Consultant").
		Preload("Company").
		Order("scheduled_at desc").
		Find(&appts).Error
	return appts, err
}

// FindMonthAppointments finds the live (non-terminal) appointments scheduled
// inside [monthStart, monthEnd). This method returns PARTIAL appointment
// entities, having only `ScheduledAt`, `Duration` and `Status` fields.
func (a *DefaultAppointmentRepository) FindMonthAppointments(ctx context.Context, filter AppointmentFilter, monthStart, monthEnd int64) ([]*entity.Appointment, error) {
	var results []*entity.Appointment

	err := scoped(a.db.WithContext(ctx).Model(&entity.Appointment{}), filter).
		Select("scheduled_at, duration, status").
		Where("status IN ?", []entity.Status{entity.StatusPending, entity.StatusAssigned, entity.StatusConfirmed}).
		Where("scheduled_at >= ?", monthStart).
		Where("scheduled_at < ?", monthEnd).
		Order("scheduled_at asc").
		Find(&results).Error

	if err != nil {
		return nil, err
	}
	return results, nil
}

func (a *DefaultAppointmentRepository) Save(ctx context.Context, appointment *entity.Appointment) error {
	return a.db.WithContext(ctx).Omit(clause.Associations).Save(appointment).Error
}

// UpdateIfUnchanged applies patch only while the stored row still has the
// status and version that were read, and bumps the version. It returns false
// when another writer changed the appointment first, even without moving
// its status.
func (a *DefaultAppointmentRepository) UpdateIfUnchanged(ctx context.Context, id string, status entity.Status, version int64, patch map[string]any) (bool, error) {
	values := make(map[string]any, len(patch)+1)
	for col, v := range patch {
		values[col] = v
	}
	values["version"] = gorm.Expr("version + 1")

	res := a.db.WithContext(ctx).
		Model(&entity.Appointment{}).
		Where("id = ? AND status = ? AND version = ?", id, status, version).
		Updates(values)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (a *DefaultAppointmentRepository) Delete(ctx context.Context, id string) (bool, error) {
	res := a.db.WithContext(ctx).Delete(&entity.Appointment{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func scoped(db *gorm.DB, filter AppointmentFilter) *gorm.DB {
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.ConsultantID != "" {
		db = db.Where("assigned_consultant_id = ?", filter.ConsultantID)
	}
	if filter.CompanyID != "" {
		db = db.Where("company_id = ?", filter.CompanyID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	return db
}
