package types

import "time"

// Tenant is a referenced organization record. Only a lookup by company
// name is exposed; no tenant management lives in this service.
type Tenant struct {
	ID          string    `json:"tenant_id" db:"tenant_id"`
	CompanyName string    `json:"company_name" db:"company_name"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
