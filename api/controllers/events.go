package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/conviteapp/convite-backend/api/middleware"
	"github.com/conviteapp/convite-backend/api/responses"
	"github.com/conviteapp/convite-backend/api/validators"
	"github.com/conviteapp/convite-backend/internal/events"
	pkgerrors "github.com/conviteapp/convite-backend/pkg/errors"
	"github.com/conviteapp/convite-backend/pkg/logger"
)

type eventCreateRequest struct {
	Name       string  `json:"name" validate:"required,min=1"`
	Venue      *string `json:"venue,omitempty"`
	HeldOn     *string `json:"held_on,omitempty"`
	GuestCount int     `json:"guest_count" validate:"min=0"`
	BarStart   *string `json:"bar_start,omitempty"`
	BarEnd     *string `json:"bar_end,omitempty"`
	BarHours   *int    `json:"bar_hours,omitempty" validate:"omitempty,min=1"`
	Notes      *string `json:"notes,omitempty"`
}

type eventParametersRequest struct {
	GuestCount *int    `json:"guest_count,omitempty" validate:"omitempty,min=0"`
	BarStart   *string `json:"bar_start,omitempty"`
	BarEnd     *string `json:"bar_end,omitempty"`
	BarHours   *int    `json:"bar_hours,omitempty" validate:"omitempty,min=1"`
}

func EventCreate(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req eventCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := events.CreateInput{
			Name:       req.Name,
			Venue:      req.Venue,
			GuestCount: req.GuestCount,
			BarStart:   req.BarStart,
			BarEnd:     req.BarEnd,
			BarHours:   req.BarHours,
			Notes:      req.Notes,
		}
		if req.HeldOn != nil {
			heldOn, err := time.Parse("2006-01-02", *req.HeldOn)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "held_on must be YYYY-MM-DD"))
				return
			}
			input.HeldOn = &heldOn
		}

		created, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func EventDetail(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "eventId"), "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		event, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, event)
	}
}

func EventList(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// EventUpdateParameters patches the live parameters driving every derived
// quantity. The session header ends up in the outbox envelope.
func EventUpdateParameters(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "eventId"), "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req eventParametersRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateParameters(r.Context(), events.UpdateParametersInput{
			EventID:    id,
			SessionID:  middleware.SessionIDFromContext(r.Context()),
			GuestCount: req.GuestCount,
			BarStart:   req.BarStart,
			BarEnd:     req.BarEnd,
			BarHours:   req.BarHours,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func EventDelete(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "eventId"), "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
