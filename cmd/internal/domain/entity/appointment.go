package entity

type Appointment struct {
	ID                   string  `gorm:"primaryKey;size:36"`
	Title                string  `gorm:"not null"`
	Description          *string `gorm:"type:text"`
	Status               Status  `gorm:"size:16;not null;index"`
	ScheduledAt          int64   `gorm:"not null;index"`
	Duration             *int    // minutes, unknown until agreed or completed
	MeetingURL           *string
	Notes                *string `gorm:"type:text"`
	CompletedAt          *int64
	ActualDuration       *int
	UserID               string  `gorm:"size:36;not null;index"` // References: users(id)
	AssignedConsultantID *string `gorm:"size:36;index"`          // References: users(id)
	CompanyID            string  `gorm:"size:36;not null;index"` // References: companies(id)
	CreatedAt            int64   `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt            int64   `gorm:"autoUpdateTime:milli;not null"`
	Version              int64   `gorm:"not null;default:0"` // bumped by every lifecycle write

	// Relations
	Requester  *User    `gorm:"foreignKey:UserID;references:ID"`
	Consultant *User    `gorm:"foreignKey:AssignedConsultantID;references:ID"`
	Company    *Company `gorm:"foreignKey:CompanyID;references:ID"`
}

func (a *Appointment) IsAssignedTo(userID string) bool {
	return a.AssignedConsultantID != nil && *a.AssignedConsultantID == userID
}

func (a *Appointment) HasConsultant() bool {
	return a.AssignedConsultantID != nil && *a.AssignedConsultantID != ""
}
