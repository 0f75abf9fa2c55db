package ginserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter assembles the gin engine with recovery plus any extra middleware.
func NewRouter(h *Handler, middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.RedirectTrailingSlash = false
	r.RemoveExtraSlash = true

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "method not allowed")
	})

	r.GET("/metrics", h.Metrics())
	r.GET("/healthz", h.Healthz)
	r.GET("/sources", h.Sources)
	r.GET("/audit", h.Audit)

	return r
}
