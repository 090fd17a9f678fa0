package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/useraccounts/apiserver/internal/services"
)

// TenantHandler exposes the tenant lookup stub.
type TenantHandler struct {
	tenantService *services.TenantService
}

func NewTenantHandler(tenantService *services.TenantService) *TenantHandler {
	return &TenantHandler{tenantService: tenantService}
}

// TenantRouter registers the tenant lookup route on the given router.
func TenantRouter(r chi.Router, tenantService *services.TenantService) {
	handler := NewTenantHandler(tenantService)

	r.Get("/tenant/{companyName}", handler.GetByCompanyName)
}

// GetByCompanyName retrieves tenant details by company name.
func (h *TenantHandler) GetByCompanyName(w http.ResponseWriter, r *http.Request) {
	companyName := strings.TrimSpace(chi.URLParam(r, "companyName"))
	if companyName == "" {
		writeError(w, http.StatusBadRequest, "missing company name")
		return
	}

	tenant, err := h.tenantService.GetByCompanyName(r.Context(), companyName)
	if err != nil {
		writeServiceError(w, err, "failed to fetch tenant")
		return
	}

	writeJSON(w, http.StatusOK, tenant)
}
