package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/internal/tenants"
)

type contextKey string

const ctxTenantScope contextKey = "tenant_scope"

// ScopeFromContext returns the tenancy resolved by TenantContext, or nil when
// the request never passed through it.
func ScopeFromContext(ctx context.Context) *tenants.Scope {
	if ctx == nil {
		return nil
	}
	if scope, ok := ctx.Value(ctxTenantScope).(*tenants.Scope); ok {
		return scope
	}
	return nil
}

// TenantIDFromContext returns the scoped tenant id, or uuid.Nil.
func TenantIDFromContext(ctx context.Context) uuid.UUID {
	if scope := ScopeFromContext(ctx); scope != nil {
		return scope.TenantID
	}
	return uuid.Nil
}

// StoreIDFromContext returns the scoped store id, or uuid.Nil.
func StoreIDFromContext(ctx context.Context) uuid.UUID {
	if scope := ScopeFromContext(ctx); scope != nil {
		return scope.StoreID
	}
	return uuid.Nil
}

// WithScope injects the resolved tenancy into the context.
func WithScope(ctx context.Context, scope *tenants.Scope) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxTenantScope, scope)
}
