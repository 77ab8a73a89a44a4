package service

import (
	"context"
	"fmt"

	"formconsult/cmd/internal/domain/entity"
)

// ConsumedHoursPolicy decides what a completed session does to the owning
// company's consulting usage counter.
type ConsumedHoursPolicy interface {
	OnCompleted(ctx context.Context, appt *entity.Appointment) error
}

func NewConsumedHoursPolicy(track bool, companies CompanyRepository) ConsumedHoursPolicy {
	if track {
		return &TrackConsumedHours{Companies: companies}
	}
	return IgnoreConsumedHours{}
}

// TrackConsumedHours adds the session's actual duration to the company.
type TrackConsumedHours struct {
	Companies CompanyRepository
}

func (p *TrackConsumedHours) OnCompleted(ctx context.Context, appt *entity.Appointment) error {
	if appt.ActualDuration == nil || *appt.ActualDuration <= 0 {
		return nil
	}
	if err := p.Companies.AddConsultingMinutes(ctx, appt.CompanyID, *appt.ActualDuration); err != nil {
		return fmt.Errorf("add %d consulting minutes to company %s: %w", *appt.ActualDuration, appt.CompanyID, err)
	}
	return nil
}

type IgnoreConsumedHours struct{}

func (IgnoreConsumedHours) OnCompleted(context.Context, *entity.Appointment) error { return nil }
