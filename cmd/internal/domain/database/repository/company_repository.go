package repository

import (
	"context"
	"errors"
	"formconsult/cmd/internal/domain/entity"

	"gorm.io/gorm"
)

type DefaultCompanyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) *DefaultCompanyRepository {
	return &DefaultCompanyRepository{db: db}
}

func (c *DefaultCompanyRepository) FindByID(ctx context.Context, id string) (*entity.Company, error) {
	var company entity.Company
	err := c.db.WithContext(ctx).First(&company, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &company, nil
}

func (c *DefaultCompanyRepository) Save(ctx context.Context, company *entity.Company) error {
	return c.db.WithContext(ctx).Save(company).Error
}

// AddConsultingMinutes increments the consumed counter in a single statement.
func (c *DefaultCompanyRepository) AddConsultingMinutes(ctx context.Context, id string, minutes int) error {
	res := c.db.WithContext(ctx).
		Model(&entity.Company{}).
		Where("id = ?", id).
		Update("consulting_minutes_used", gorm.Expr("consulting_minutes_used + ?", minutes))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
