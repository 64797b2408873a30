package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/conviteapp/convite-backend/api/responses"
	"github.com/conviteapp/convite-backend/api/validators"
	"github.com/conviteapp/convite-backend/internal/recipes"
	"github.com/conviteapp/convite-backend/pkg/logger"
)

type recipeLineRequest struct {
	IngredientName string  `json:"ingredient_name" validate:"required,min=1"`
	BaseQuantity   float64 `json:"base_quantity" validate:"gt=0"`
	Unit           string  `json:"unit"`
}

type recipeRequest struct {
	Name          string              `json:"name" validate:"required,min=1"`
	BaseServings  int                 `json:"base_servings" validate:"min=1"`
	EventServings int                 `json:"event_servings" validate:"min=0"`
	Allergens     []string            `json:"allergens,omitempty"`
	Notes         *string             `json:"notes,omitempty"`
	Ingredients   []recipeLineRequest `json:"ingredients" validate:"dive"`
}

func (r recipeRequest) toInput(eventID uuid.UUID) recipes.Input {
	input := recipes.Input{
		EventID:       eventID,
		Name:          r.Name,
		BaseServings:  r.BaseServings,
		EventServings: r.EventServings,
		Allergens:     r.Allergens,
		Notes:         r.Notes,
	}
	for _, line := range r.Ingredients {
		input.Ingredients = append(input.Ingredients, recipes.LineInput{
			IngredientName: line.IngredientName,
			BaseQuantity:   line.BaseQuantity,
			Unit:           line.Unit,
		})
	}
	return input
}

func RecipeCreate(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(chi.URLParam(r, "eventId"), "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req recipeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.Create(r.Context(), req.toInput(eventID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func RecipeList(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(chi.URLParam(r, "eventId"), "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListByEvent(r.Context(), eventID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func RecipeDetail(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "recipeId"), "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recipe, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, recipe)
	}
}

func RecipeUpdate(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventID, err := validators.ParseUUIDParam(chi.URLParam(r, "eventId"), "eventId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		recipeID, err := validators.ParseUUIDParam(chi.URLParam(r, "recipeId"), "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req recipeRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.Update(r.Context(), recipeID, req.toInput(eventID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func RecipeDelete(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "recipeId"), "recipeId")
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

func RecipeCost(svc recipes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(chi.URLParam(r, "recipeId"), "recipeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		summary, err := svc.Cost(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
