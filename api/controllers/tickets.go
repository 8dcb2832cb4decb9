package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tillpointhq/tillpoint-backend/api/middleware"
	"github.com/tillpointhq/tillpoint-backend/api/responses"
	"github.com/tillpointhq/tillpoint-backend/api/validators"
	"github.com/tillpointhq/tillpoint-backend/internal/tickets"
	pkgerrors "github.com/tillpointhq/tillpoint-backend/pkg/errors"
	"github.com/tillpointhq/tillpoint-backend/pkg/logger"
	"github.com/tillpointhq/tillpoint-backend/pkg/pagination"
)

// ListTickets returns the open kitchen tickets for the scoped store, newest
// first, as one cursor page.
func ListTickets(svc *tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.ListOpen(ctx,
			middleware.TenantIDFromContext(ctx),
			middleware.StoreIDFromContext(ctx),
			pagination.Params{Limit: limit, Cursor: r.URL.Query().Get("cursor")},
		)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// AdvanceTicket moves a ticket one status step forward.
func AdvanceTicket(svc *tickets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ticketID, err := uuid.Parse(chi.URLParam(r, "ticketID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid ticket id"))
			return
		}

		view, err := svc.AdvanceStatus(ctx,
			middleware.TenantIDFromContext(ctx),
			middleware.StoreIDFromContext(ctx),
			ticketID,
		)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}
