package entity

import "strings"

type Role string

const (
	RoleEmployee     Role = "EMPLOYE"
	RoleConsultant   Role = "CONSULTANT"
	RoleTrainer      Role = "FORMATEUR"
	RoleCompanyAdmin Role = "ADMIN_ENTREPRISE"
	RoleSuperAdmin   Role = "SUPER_ADMIN"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleConsultant, RoleTrainer, RoleCompanyAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type User struct {
	ID        string  `gorm:"primaryKey;size:36"`
	SubUUID   string  `gorm:"size:64;uniqueIndex;not null"`
	Name      string  `gorm:"not null"`
	Email     string  `gorm:"uniqueIndex;not null"`
	Role      Role    `gorm:"size:32;not null;index"`
	CompanyID *string `gorm:"size:36;index"` // References: companies(id); nil for SUPER_ADMIN
	CreatedAt int64   `gorm:"autoCreateTime:milli;not null"`
	UpdatedAt int64   `gorm:"autoUpdateTime:milli;not null"`

	// Relations
	Company *Company `gorm:"foreignKey:CompanyID;references:ID"`
}

// BelongsTo reports whether the user is attached to the given company.
func (u *User) BelongsTo(companyID string) bool {
	return u.CompanyID != nil && companyID != "" && *u.CompanyID == companyID
}

// DisplayName returns the user's name, or fallback when it is blank.
func (u *User) DisplayName(fallback string) string {
	if u == nil {
		return fallback
	}
	if name := strings.TrimSpace(u.Name); name != "" {
		return name
	}
	return fallback
}
