package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/conviteapp/convite-backend/api/controllers"
	"github.com/conviteapp/convite-backend/api/middleware"
	"github.com/conviteapp/convite-backend/internal/consolidation"
	"github.com/conviteapp/convite-backend/internal/events"
	"github.com/conviteapp/convite-backend/internal/ingredients"
	"github.com/conviteapp/convite-backend/internal/lineitems"
	"github.com/conviteapp/convite-backend/internal/recipes"
	"github.com/conviteapp/convite-backend/pkg/config"
	"github.com/conviteapp/convite-backend/pkg/logger"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            controllers.Pinger
	Redis         controllers.Pinger
	PubSub        controllers.Pinger
	Events        events.Service
	LineItems     lineitems.Service
	Consolidation consolidation.Service
	Recipes       recipes.Service
	Ingredients   ingredients.Service
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.SessionID(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":     deps.DB,
			"redis":  deps.Redis,
			"pubsub": deps.PubSub,
		}))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", controllers.CatalogList(logg))

		r.Route("/events", func(r chi.Router) {
			r.Get("/", controllers.EventList(deps.Events, logg))
			r.Post("/", controllers.EventCreate(deps.Events, logg))

			r.Route("/{eventId}", func(r chi.Router) {
				r.Get("/", controllers.EventDetail(deps.Events, logg))
				r.Patch("/parameters", controllers.EventUpdateParameters(deps.Events, logg))
				r.Delete("/", controllers.EventDelete(deps.Events, logg))

				r.Route("/line-items/{family}", func(r chi.Router) {
					r.Get("/", controllers.LineItemList(deps.LineItems, logg))
					r.Post("/generate", controllers.LineItemGenerate(deps.LineItems, logg))
					r.Post("/recalculate", controllers.LineItemRecalculate(deps.LineItems, logg))
					r.Put("/", controllers.LineItemSave(deps.LineItems, logg))
					r.Post("/toggle-override", controllers.LineItemToggleOverride(deps.LineItems, logg))
					r.Post("/items", controllers.LineItemAdd(deps.LineItems, logg))
					r.Post("/items/remove", controllers.LineItemRemove(deps.LineItems, logg))
				})

				r.Route("/recipes", func(r chi.Router) {
					r.Get("/", controllers.RecipeList(deps.Recipes, logg))
					r.Post("/", controllers.RecipeCreate(deps.Recipes, logg))
					r.Put("/{recipeId}", controllers.RecipeUpdate(deps.Recipes, logg))
				})

				r.Get("/consolidation", controllers.Consolidate(deps.Consolidation, logg))
			})
		})

		r.Route("/recipes/{recipeId}", func(r chi.Router) {
			r.Get("/", controllers.RecipeDetail(deps.Recipes, logg))
			r.Get("/cost", controllers.RecipeCost(deps.Recipes, logg))
			r.Delete("/", controllers.RecipeDelete(deps.Recipes, logg))
		})

		r.Route("/ingredients", func(r chi.Router) {
			r.Get("/", controllers.IngredientList(deps.Ingredients, logg))
			r.Post("/", controllers.IngredientCreate(deps.Ingredients, logg))
			r.Get("/{ingredientId}", controllers.IngredientDetail(deps.Ingredients, logg))
			r.Put("/{ingredientId}", controllers.IngredientUpdate(deps.Ingredients, logg))
			r.Delete("/{ingredientId}", controllers.IngredientDelete(deps.Ingredients, logg))
		})
	})

	return r
}
