package services

import (
	"context"

	"github.com/useraccounts/apiserver/types"
)

// TenantRepository defines the single tenant lookup this service exposes.
type TenantRepository interface {
	GetByCompanyName(ctx context.Context, companyName string) (types.Tenant, error)
}

// TenantService wraps the tenant lookup stub.
type TenantService struct {
	repo TenantRepository
}

func NewTenantService(repo TenantRepository) *TenantService {
	return &TenantService{repo: repo}
}

func (s *TenantService) GetByCompanyName(ctx context.Context, companyName string) (types.Tenant, error) {
	return s.repo.GetByCompanyName(ctx, companyName)
}
