package repository

import (
	"context"
	"errors"
	"formconsult/cmd/internal/domain/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultUserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *DefaultUserRepository {
	return &DefaultUserRepository{db: db}
}

func (u *DefaultUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return u.first(ctx, "id = ?", id)
}

func (u *DefaultUserRepository) FindBySub(ctx context.Context, sub string) (*entity.User, error) {
	return u.first(ctx, "sub_uuid = ?", sub)
}

func (u *DefaultUserRepository) FindByCompanyAndRole(ctx context.Context, companyID string, role entity.Role) ([]*entity.User, error) {
	var users []*entity.User
	err := u.db.WithContext(ctx).
		Where("company_id = ? AND role = ?", companyID, role).
		Order("created_at asc").
		Find(&users).Error
	return users, err
}

func (u *DefaultUserRepository) FindAllByRole(ctx context.Context, role entity.Role) ([]*entity.User, error) {
	var users []*entity.User
	err := u.db.WithContext(ctx).
		Where("role = ?", role).
		Order("created_at asc").
		Find(&users).Error
	return users, err
}

func (u *DefaultUserRepository) Save(ctx context.Context, user *entity.User) error {
	return u.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error
}

func (u *DefaultUserRepository) first(ctx context.Context, query string, arg any) (*entity.User, error) {
	var user entity.User
	err := u.db.WithContext(ctx).Preload("Company").First(&user, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
