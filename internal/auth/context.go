package auth

import (
	"context"

	"github.com/swiftslot/swiftslot/internal/model"
)

type ctxKey int

const (
	authKey ctxKey = iota
	tenantKey
)

// ContextWithAuth attaches the identity proven by a bearer token.
func ContextWithAuth(ctx context.Context, authCtx *model.AuthContext) context.Context {
	return context.WithValue(ctx, authKey, authCtx)
}

// AuthFromContext returns the authenticated identity, or nil.
func AuthFromContext(ctx context.Context) *model.AuthContext {
	authCtx, _ := ctx.Value(authKey).(*model.AuthContext)
	return authCtx
}

// ContextWithTenant stamps the organization id the request is authorized for.
// Only the tenant boundary calls it.
func ContextWithTenant(ctx context.Context, organizationID string) context.Context {
	return context.WithValue(ctx, tenantKey, organizationID)
}

// TenantFromContext returns the authorized organization id.
// ok is false when the tenant boundary has not run.
func TenantFromContext(ctx context.Context) (string, bool) {
	orgID, ok := ctx.Value(tenantKey).(string)
	if !ok || orgID == "" {
		return "", false
	}
	return orgID, true
}
