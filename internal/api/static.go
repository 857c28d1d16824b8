package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guttosm/b3penny/internal/domain/dto"
)

// spaFallback serves files from dir and falls back to index.html for client
// side routes. API paths and a missing dir always answer a JSON 404.
func spaFallback(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if dir == "" || strings.HasPrefix(p, "/api/") || c.Request.Method != http.MethodGet {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("route not found", nil))
			return
		}

		// path.Clean on a rooted path never escapes dir; ServeFile also rejects ".."
		file := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+p)))
		if fi, err := os.Stat(file); err == nil && !fi.IsDir() {
			c.File(file)
			return
		}
		if _, err := os.Stat(index); err != nil {
			c.JSON(http.StatusNotFound, dto.NewErrorResponse("route not found", nil))
			return
		}
		c.File(index)
	}
}
