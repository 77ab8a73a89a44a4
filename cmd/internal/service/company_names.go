package service

import (
	"context"
	"errors"
	"time"

	"formconsult/cmd/internal/domain/entity"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type CompanyRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Company, error)
	AddConsultingMinutes(ctx context.Context, id string, minutes int) error
}

// CompanyNameCache memoizes company display names looked up during fan-out.
// Entries expire after ttl so a renamed company shows up without a restart.
type CompanyNameCache struct {
	repo  CompanyRepository
	names *expirable.LRU[string, string]
}

func NewCompanyNameCache(repo CompanyRepository, size int, ttl time.Duration) (*CompanyNameCache, error) {
	if size <= 0 {
		return nil, errors.New("company name cache: size must be positive")
	}
	if ttl <= 0 {
		return nil, errors.New("company name cache: ttl must be positive")
	}
	return &CompanyNameCache{repo: repo, names: expirable.NewLRU[string, string](size, nil, ttl)}, nil
}

// Name returns the company's name, or "" when the company does not exist.
func (c *CompanyNameCache) Name(ctx context.Context, companyID string) (string, error) {
	if name, ok := c.names.Get(companyID); ok {
		return name, nil
	}

	company, err := c.repo.FindByID(ctx, companyID)
	if err != nil {
		return "", err
	}
	if company == nil {
		return "", nil
	}
	c.names.Add(companyID, company.Name)
	return company.Name, nil
}
