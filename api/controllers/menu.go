package controllers

import (
	"net/http"

	"github.com/tillpointhq/tillpoint-backend/api/middleware"
	"github.com/tillpointhq/tillpoint-backend/api/responses"
	"github.com/tillpointhq/tillpoint-backend/internal/menu"
	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
)

// Menu lists the scoped store's active items.
func Menu(svc *menu.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		items, err := svc.ListActive(ctx, middleware.TenantIDFromContext(ctx), middleware.StoreIDFromContext(ctx))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}
