package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/origon-labs/apiutils/config"
	"github.com/origon-labs/apiutils/server"
	"github.com/origon-labs/apiutils/server/middleware"
)

// configResponse is the body of GET /api/config. Secret settings appear
// masked; the catalogs come from Mongo and are empty when no store is wired.
type configResponse struct {
	ConfigItems []config.Item    `json:"config_items"`
	Versions    []map[string]any `json:"versions"`
	Enumerators []map[string]any `json:"enumerators"`
}

// configHandler returns the resolved configuration with provenance, plus the
// Versions and Enumerators catalogs. Requires authentication.
func configHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		crumb := middleware.NewBreadcrumb(c)
		deps.Log.Info("Config requested", crumb.Fields())

		resp := configResponse{
			ConfigItems: deps.Config.Items(),
			Versions:    []map[string]any{},
			Enumerators: []map[string]any{},
		}

		if deps.Catalog != nil {
			ctx := c.Request.Context()
			versions, err := deps.Catalog.Versions(ctx)
			if err != nil {
				server.RespondWithError(c, err)
				return
			}
			enumerators, err := deps.Catalog.Enumerators(ctx)
			if err != nil {
				server.RespondWithError(c, err)
				return
			}
			resp.Versions = versions
			resp.Enumerators = enumerators
		}

		server.RespondOK(c, resp)
	}
}
