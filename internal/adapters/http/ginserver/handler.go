// Package ginserver exposes the bridge's HTTP surface: the scrape endpoint,
// a health probe, and read-only views of the listening session.
package ginserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vshulcz/Countra/internal/services/audit"
)

// SourceLister reports which telemetry sources the session has enabled.
type SourceLister interface {
	Enabled() []string
}

// AuditReader serves recent lifecycle events from a journal.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

const auditPageSize = 100

// Handler wires the bridge collaborators into gin endpoints.
type Handler struct {
	gatherer prometheus.Gatherer
	sources  SourceLister
	journal  AuditReader
}

// NewHandler builds a Handler. journal may be nil when no audit store is
// configured; the audit endpoint then reports 404.
func NewHandler(gatherer prometheus.Gatherer, sources SourceLister, journal AuditReader) *Handler {
	return &Handler{gatherer: gatherer, sources: sources, journal: journal}
}

// Metrics serves `GET /metrics` in the Prometheus exposition format.
func (h *Handler) Metrics() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{}))
}

// Healthz handles `GET /healthz`.
func (h *Handler) Healthz(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Sources handles `GET /sources`, listing enabled sources in enable order.
func (h *Handler) Sources(c *gin.Context) {
	sources := []string{}
	if h.sources != nil {
		sources = h.sources.Enabled()
	}
	c.JSON(http.StatusOK, gin.H{"sources": sources})
}

// Audit handles `GET /audit`, returning the most recent lifecycle events.
func (h *Handler) Audit(c *gin.Context) {
	if h.journal == nil {
		c.String(http.StatusNotFound, "audit journal not configured")
		return
	}
	events, err := h.journal.Recent(c.Request.Context(), auditPageSize)
	if err != nil {
		c.String(http.StatusInternalServerError, "audit journal unavailable")
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
