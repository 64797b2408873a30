package controllers

import (
	"net/http"
	"strings"

	"github.com/conviteapp/convite-backend/api/responses"
	"github.com/conviteapp/convite-backend/internal/catalog"
	"github.com/conviteapp/convite-backend/pkg/enums"
	pkgerrors "github.com/conviteapp/convite-backend/pkg/errors"
	"github.com/conviteapp/convite-backend/pkg/logger"
)

// CatalogList exposes the compiled-in ratio table, optionally filtered by
// family.
func CatalogList(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.URL.Query().Get("family"))
		if raw == "" {
			responses.WriteSuccess(w, catalog.All())
			return
		}
		family, err := enums.ParseItemFamily(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item family"))
			return
		}
		responses.WriteSuccess(w, catalog.ByFamily(family))
	}
}
