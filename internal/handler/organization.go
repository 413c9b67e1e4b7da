package handler

import (
	"log/slog"
	"net/http"

	"github.com/swiftslot/swiftslot/internal/service"
)

// OrganizationHandler serves the caller's organization profile and members.
type OrganizationHandler struct {
	svc    *service.OrganizationService
	logger *slog.Logger
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(svc *service.OrganizationService, logger *slog.Logger) *OrganizationHandler {
	return &OrganizationHandler{
		svc:    svc,
		logger: logger.With("component", "organization_handler"),
	}
}

// Get handles GET /api/v1/organizations/{organizationId}.
func (h *OrganizationHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenantOrFail(w, r, h.logger)
	if !ok {
		return
	}

	org, err := h.svc.GetOrganization(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, org)
}

// ListUsers handles GET /api/v1/organizations/{organizationId}/users.
func (h *OrganizationHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenantOrFail(w, r, h.logger)
	if !ok {
		return
	}

	users, err := h.svc.ListUsers(r.Context(), orgID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, users)
}
