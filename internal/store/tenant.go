package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/useraccounts/apiserver/types"
)

// TenantRepository handles lookups for the referenced tenants table.
type TenantRepository struct {
	db *sql.DB
}

func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// GetByCompanyName fetches a tenant by company name, case-insensitively.
func (r *TenantRepository) GetByCompanyName(ctx context.Context, companyName string) (types.Tenant, error) {
	const query = `
		SELECT tenant_id, company_name, created_at
		FROM tenants
		WHERE lower(company_name) = lower($1)`
	var tenant types.Tenant
	err := r.db.QueryRowContext(ctx, query, companyName).Scan(
		&tenant.ID,
		&tenant.CompanyName,
		&tenant.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Tenant{}, ErrNotFound
		}
		return types.Tenant{}, unavailable(err)
	}
	return tenant, nil
}
