package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/origon-labs/apiutils/errors"
	"github.com/origon-labs/apiutils/server"
)

// explorerHandler serves the static API documentation from the configured
// docs folder. Paths are normalized and confined to the folder; anything
// escaping it is answered with 404, same as a missing file.
func explorerHandler(docsFolder string) gin.HandlerFunc {
	root := filepath.Clean(docsFolder)

	return func(c *gin.Context) {
		rel := strings.TrimPrefix(c.Param("filepath"), "/")
		if rel == "" {
			rel = "index.html"
		}

		full := filepath.Join(root, filepath.Clean("/"+rel))
		if !strings.HasPrefix(full, root+string(os.PathSeparator)) && full != root {
			server.RespondWithError(c, apperrors.NotFound("document"))
			return
		}

		info, err := os.Stat(full)
		if err != nil {
			server.RespondWithError(c, apperrors.NotFound("document"))
			return
		}
		if info.IsDir() {
			full = filepath.Join(full, "index.html")
			if _, err := os.Stat(full); err != nil {
				server.RespondWithError(c, apperrors.NotFound("document"))
				return
			}
		}

		c.Status(http.StatusOK)
		c.File(full)
	}
}
