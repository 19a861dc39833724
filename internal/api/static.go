package api

import (
	"net/http"      // HTTP status codes
	"os"            // File checks
	"path"          // URL path cleaning
	"path/filepath" // Filesystem paths
	"strings"       // Prefix checks

	"github.com/gin-gonic/gin" // Gin web framework
)

// SPAHandler serves the built frontend from dir. Unknown GET paths get index.html
// so client-side routes survive a reload; unknown API paths get a JSON 404.
func SPAHandler(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Not found"})
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "Not found"})
			return
		}
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			c.String(http.StatusNotFound, "Frontend build not found. Run `npm run build`.")
			return
		}

		// Cleaning against a rooted path keeps the result inside dir
		rel := path.Clean("/" + c.Request.URL.Path)
		if rel != "/" {
			file := filepath.Join(dir, filepath.FromSlash(rel))
			if info, err := os.Stat(file); err == nil && !info.IsDir() {
				c.File(file)
				return
			}
		}
		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			c.String(http.StatusNotFound, "Not found")
			return
		}
		c.File(index)
	}
}
