package middleware

import (
	"net/http"

	"github.com/tillpointhq/tillpoint-backend/api/responses"
	"github.com/tillpointhq/tillpoint-backend/internal/tenants"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
)

const (
	tenantSlugHeader = "X-Tenant-Slug"
	storeIDHeader    = "X-Store-Id"
)

// TenantContext resolves the X-Tenant-Slug header (and optional X-Store-Id)
// into a tenancy scope for every downstream handler. Requests without a valid
// tenant never reach the handlers.
func TenantContext(resolver *tenants.Service, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			slug := r.Header.Get(tenantSlugHeader)
			if slug == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "tenant slug header required"))
				return
			}

			scope, err := resolver.Resolve(ctx, slug, r.Header.Get(storeIDHeader))
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}

			ctx = WithScope(ctx, scope)
			if logg != nil {
				ctx = logg.WithTenantID(ctx, scope.TenantID.String())
				ctx = logg.WithStoreID(ctx, scope.StoreID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
