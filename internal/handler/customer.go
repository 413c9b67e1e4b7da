package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/swiftslot/swiftslot/internal/handler/dto"
	"github.com/swiftslot/swiftslot/internal/service"
)

// CustomerHandler handles HTTP requests for CRM customers.
type CustomerHandler struct {
	svc    *service.CustomerService
	logger *slog.Logger
}

// NewCustomerHandler creates a new CustomerHandler.
func NewCustomerHandler(svc *service.CustomerService, logger *slog.Logger) *CustomerHandler {
	return &CustomerHandler{
		svc:    svc,
		logger: logger.With("component", "customer_handler"),
	}
}

// List handles GET /api/v1/customers.
func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenantOrFail(w, r, h.logger)
	if !ok {
		return
	}

	customers, err := h.svc.ListCustomers(r.Context(), orgID, r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, customers)
}

// Get handles GET /api/v1/customers/{id}.
func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenantOrFail(w, r, h.logger)
	if !ok {
		return
	}

	detail, err := h.svc.GetCustomer(r.Context(), orgID, chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, detail)
}

// Create handles POST /api/v1/customers.
func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenantOrFail(w, r, h.logger)
	if !ok {
		return
	}

	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	c, err := h.svc.CreateCustomer(r.Context(), orgID, service.CreateCustomerInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Tags:      req.Tags,
		Notes:     req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("customer_created",
		slog.String("customer_id", c.ID),
		slog.String("organization_id", orgID),
	)
	writeSuccess(w, http.StatusCreated, c)
}

// Update handles PATCH /api/v1/customers/{id}.
func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenantOrFail(w, r, h.logger)
	if !ok {
		return
	}

	var req dto.UpdateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	input := service.UpdateCustomerInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Notes:     req.Notes,
	}
	if req.Tags != nil {
		input.Tags = *req.Tags
		if input.Tags == nil {
			input.Tags = []string{}
		}
	}

	c, err := h.svc.UpdateCustomer(r.Context(), orgID, chi.URLParam(r, "id"), input)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, c)
}

// Delete handles DELETE /api/v1/customers/{id}.
func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orgID, ok := tenantOrFail(w, r, h.logger)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteCustomer(r.Context(), orgID, id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	h.logger.Info("customer_deleted",
		slog.String("customer_id", id),
		slog.String("organization_id", orgID),
	)
	writeJSON(w, http.StatusOK, dto.SuccessResponse{Success: true, Message: "Deleted"})
}
