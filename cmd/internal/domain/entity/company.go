package entity

type Company struct {
	ID                    string `gorm:"primaryKey;size:36"`
	Name                  string `gorm:"not null"`
	ConsultingMinutesUsed int    `gorm:"not null;default:0"`
	CreatedAt             int64  `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt             int64  `gorm:"autoUpdateTime:milli;not null"`
}
