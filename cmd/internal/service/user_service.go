package service

import (
	"context"

	"formconsult/cmd/internal/domain/entity"
	"formconsult/cmd/internal/utils"
	"formconsult/cmd/internal/utils/apierror"

	"github.com/labstack/gommon/log"
)

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindBySub(ctx context.Context, sub string) (*entity.User, error)
	FindByCompanyAndRole(ctx context.Context, companyID string, role entity.Role) ([]*entity.User, error)
	FindAllByRole(ctx context.Context, role entity.Role) ([]*entity.User, error)
}

type UserResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Role      string          `json:"role"`
	CompanyID *string         `json:"company_id"`
	Company   *CompanySummary `json:"company,omitempty"`
	CreatedAt string          `json:"created_at"`
	UpdatedAt string          `json:"updated_at"`
}

type DefaultUserService struct {
	UserRepo UserRepository
}

func NewUserService(userRepo UserRepository) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo}
}

// GetUsers lists users having role. A super admin sees every user, a company
// admin only the users of its own company.
func (u *DefaultUserService) GetUsers(ctx context.Context, sub, rawRole string) ([]*UserResponse, apierror.ErrorResponse) {
	caller, apierr := fetchActor(ctx, u.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}

	role := entity.Role(rawRole)
	if !role.IsValid() {
		return nil, apierror.NewValidationError("role", "Unknown role '"+rawRole+"'")
	}

	var (
		users []*entity.User
		err   error
	)
	switch {
	case caller.Role == entity.RoleSuperAdmin:
		users, err = u.UserRepo.FindAllByRole(ctx, role)
	case caller.Role == entity.RoleCompanyAdmin && caller.CompanyID != nil:
		users, err = u.UserRepo.FindByCompanyAndRole(ctx, *caller.CompanyID, role)
	default:
		return nil, apierror.ForbiddenError
	}

	if err != nil {
		log.Errorf("failed to fetch users with role %s: %v", role, err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*UserResponse, len(users))
	for i, user := range users {
		resp[i] = toUserResponse(user)
	}
	return resp, nil
}

// GetUser resolves rawId, or the caller itself for "@me". Other users are
// visible to super admins and to admins of the same company.
func (u *DefaultUserService) GetUser(ctx context.Context, rawId, sub string) (*UserResponse, apierror.ErrorResponse) {
	caller, apierr := fetchActor(ctx, u.UserRepo, sub)
	if apierr != nil {
		return nil, apierr
	}

	if rawId == "@me" || rawId == caller.ID {
		return toUserResponse(caller), nil
	}

	user, err := u.UserRepo.FindByID(ctx, rawId)
	if err != nil {
		log.Errorf("failed to find user (%s) by id: %v", rawId, err)
		return nil, apierror.InternalServerError
	}

	if user == nil {
		return nil, apierror.NotFoundError
	}

	if !canSeeUser(caller, user) {
		return nil, apierror.ForbiddenError
	}
	return toUserResponse(user), nil
}

func canSeeUser(caller, user *entity.User) bool {
	switch caller.Role {
	case entity.RoleSuperAdmin:
		return true
	case entity.RoleCompanyAdmin:
		return user.CompanyID != nil && caller.BelongsTo(*user.CompanyID)
	}
	return false
}

// fetchActor loads the authenticated user behind sub.
func fetchActor(ctx context.Context, users UserRepository, sub string) (*entity.User, apierror.ErrorResponse) {
	user, err := users.FindBySub(ctx, sub)
	if err != nil {
		log.Errorf("failed to find user (%s) by sub: %v", sub, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.UnknownUserError
	}
	return user, nil
}

func toUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      string(user.Role),
		CompanyID: user.CompanyID,
		Company:   toCompanySummary(user.Company),
		CreatedAt: utils.FormatEpoch(user.CreatedAt),
		UpdatedAt: utils.FormatEpoch(user.UpdatedAt),
	}
}
