package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/conviteapp/convite-backend/api/responses"
	"github.com/conviteapp/convite-backend/api/validators"
	"github.com/conviteapp/convite-backend/internal/consolidation"
	"github.com/conviteapp/convite-backend/pkg/logger"
)

// Consolidate returns one purchase order per supplier for the event.
func Consolidate(svc consolidation.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(chi.URLParam(r, "eventId"), "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orders, err := svc.Consolidate(r.Context(), eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}
