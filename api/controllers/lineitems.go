package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/conviteapp/convite-backend/api/middleware"
	"github.com/conviteapp/convite-backend/api/responses"
	"github.com/conviteapp/convite-backend/api/validators"
	"github.com/conviteapp/convite-backend/internal/lineitems"
	"github.com/conviteapp/convite-backend/pkg/db/models"
	"github.com/conviteapp/convite-backend/pkg/enums"
	pkgerrors "github.com/conviteapp/convite-backend/pkg/errors"
	"github.com/conviteapp/convite-backend/pkg/logger"
)

func lineItemScope(r *http.Request) (lineitems.Request, error) {
	eventID, err := validators.ParseUUIDParam(chi.URLParam(r, "eventId"), "eventId")
	if err != nil {
		return lineitems.Request{}, err
	}
	family, err := enums.ParseItemFamily(chi.URLParam(r, "family"))
	if err != nil {
		return lineitems.Request{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item family")
	}
	return lineitems.Request{
		EventID:   eventID,
		Family:    family,
		SessionID: middleware.SessionIDFromContext(r.Context()),
	}, nil
}

func LineItemList(svc lineitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := lineItemScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.List(r.Context(), scope.EventID, scope.Family)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func LineItemGenerate(svc lineitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := lineItemScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.GenerateFromCatalog(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

func LineItemRecalculate(svc lineitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := lineItemScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Recalculate(r.Context(), scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

type lineItemRow struct {
	ID        *uuid.UUID `json:"id,omitempty"`
	Category  string     `json:"category" validate:"required,min=1"`
	Name      string     `json:"name" validate:"required,min=1"`
	Quantity  int        `json:"quantity" validate:"min=0"`
	UnitPrice float64    `json:"unit_price" validate:"min=0"`
	Notes     *string    `json:"notes,omitempty"`
	Override  bool       `json:"is_override"`
	PhotoRef  *string    `json:"photo_ref,omitempty"`
}

type lineItemSaveRequest struct {
	Items []lineItemRow `json:"items" validate:"required,dive"`
}

func LineItemSave(svc lineitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := lineItemScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req lineItemSaveRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]models.LineItem, 0, len(req.Items))
		for _, row := range req.Items {
			item := models.LineItem{
				Category:   row.Category,
				Name:       row.Name,
				Quantity:   row.Quantity,
				UnitPrice:  row.UnitPrice,
				Notes:      row.Notes,
				IsOverride: row.Override,
				PhotoRef:   row.PhotoRef,
			}
			if row.ID != nil {
				item.ID = *row.ID
			}
			items = append(items, item)
		}

		persisted, err := svc.Save(r.Context(), scope, items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, persisted)
	}
}

type indexRequest struct {
	Index int `json:"index" validate:"min=0"`
}

func LineItemToggleOverride(svc lineitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := lineItemScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req indexRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ToggleOverride(r.Context(), scope, req.Index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

type manualItemRequest struct {
	Category  string  `json:"category"`
	Name      string  `json:"name" validate:"required,min=1"`
	Quantity  int     `json:"quantity" validate:"min=0"`
	UnitPrice float64 `json:"unit_price" validate:"min=0"`
	Notes     *string `json:"notes,omitempty"`
}

func LineItemAdd(svc lineitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := lineItemScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req manualItemRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.AddManualItem(r.Context(), scope, lineitems.ManualItemInput{
			Category:  req.Category,
			Name:      req.Name,
			Quantity:  req.Quantity,
			UnitPrice: req.UnitPrice,
			Notes:     req.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, items)
	}
}

func LineItemRemove(svc lineitems.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := lineItemScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req indexRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.RemoveItem(r.Context(), scope, req.Index)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
