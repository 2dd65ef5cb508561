package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"valet-parking-backend/internal/customer"
	"valet-parking-backend/internal/errs"
	"valet-parking-backend/internal/events"
	"valet-parking-backend/internal/layout"
	"valet-parking-backend/internal/occupancy"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	engine    *occupancy.Engine
	layouts   *layout.Service
	customers *customer.Service
	hub       *events.Hub
	log       logrus.FieldLogger
}

// NewHandler creates a new API handler.
func NewHandler(engine *occupancy.Engine, layouts *layout.Service, customers *customer.Service, hub *events.Hub, log logrus.FieldLogger) *Handler {
	return &Handler{
		engine:    engine,
		layouts:   layouts,
		customers: customers,
		hub:       hub,
		log:       log.WithField("component", "api"),
	}
}

var statusByKind = map[string]int{
	"validation_error":  http.StatusBadRequest,
	"not_found":         http.StatusNotFound,
	"spot_unavailable":  http.StatusConflict,
	"conflict":          http.StatusConflict,
	"invalid_state":     http.StatusConflict,
	"integrity_error":   http.StatusInternalServerError,
	"store_unavailable": http.StatusServiceUnavailable,
}

// respondError writes the error body {"error": kind, "message": text}.
func (h *Handler) respondError(c *gin.Context, err error) {
	kind := errs.Kind(err)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	switch {
	case kind == "internal_error":
		h.log.WithError(err).WithField("path", c.FullPath()).Error("unexpected error")
		message = "internal error"
	case status >= http.StatusInternalServerError:
		h.log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": kind, "message": message})
}

func (h *Handler) badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "validation_error", "message": message})
}
