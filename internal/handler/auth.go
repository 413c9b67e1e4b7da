package handler

import (
	"log/slog"
	"net"
	"net/http"

	"github.com/swiftslot/swiftslot/internal/handler/dto"
	"github.com/swiftslot/swiftslot/internal/service"
)

// AuthHandler handles registration, login and token refresh.
type AuthHandler struct {
	svc    *service.IdentityService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.IdentityService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger.With("component", "auth_handler"),
	}
}

// Register handles POST /api/v1/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	res, err := h.svc.Register(r.Context(), service.RegisterInput{
		OrganizationName: req.OrganizationName,
		Slug:             req.Slug,
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		Timezone:         req.Timezone,
		IP:               remoteIP(r),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusCreated, dto.ToRegisterResponse(res.Organization, res.User, res.Tokens))
}

// Login handles POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	res, err := h.svc.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       remoteIP(r),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, dto.ToLoginResponse(res.User, res.Tokens))
}

// Refresh handles POST /api/v1/auth/refresh.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	tokens, err := h.svc.Refresh(r.Context(), service.RefreshInput{
		RefreshToken: req.RefreshToken,
		IP:           remoteIP(r),
	})
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeSuccess(w, http.StatusOK, tokens)
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
