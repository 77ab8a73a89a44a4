package service

import "formconsult/cmd/internal/domain/entity"

// AccessRule decides whether a user may act on an appointment.
type AccessRule func(u *entity.User, a *entity.Appointment) bool

func isRequester(u *entity.User, a *entity.Appointment) bool {
	return a.UserID == u.ID
}

func isAssignedConsultant(u *entity.User, a *entity.Appointment) bool {
	return u.Role == entity.RoleConsultant && a.IsAssignedTo(u.ID)
}

func isCompanyAdmin(u *entity.User, a *entity.Appointment) bool {
	return u.Role == entity.RoleCompanyAdmin && u.BelongsTo(a.CompanyID)
}

func isSuperAdmin(u *entity.User, _ *entity.Appointment) bool {
	return u.Role == entity.RoleSuperAdmin
}

func anyOf(rules ...AccessRule) AccessRule {
	return func(u *entity.User, a *entity.Appointment) bool {
		if u == nil || a == nil {
			return false
		}
		for _, rule := range rules {
			if rule(u, a) {
				return true
			}
		}
		return false
	}
}

// A consultant may move an appointment it is assigned to but may not delete
// it. Being the requester allows reading and deleting, never a transition.
var (
	CanRead       = anyOf(isRequester, isAssignedConsultant, isCompanyAdmin, isSuperAdmin)
	CanTransition = anyOf(isAssignedConsultant, isCompanyAdmin, isSuperAdmin)
	CanDelete     = anyOf(isRequester, isCompanyAdmin, isSuperAdmin)
)
