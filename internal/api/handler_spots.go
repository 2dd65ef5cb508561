package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"valet-parking-backend/internal/layout"
	"valet-parking-backend/internal/model"
)

// maxLayoutBytes bounds an uploaded layout file.
const maxLayoutBytes = 1 << 20

// ListAvailableSpots handles GET /api/lots/:lot_id/spots/available.
func (h *Handler) ListAvailableSpots(c *gin.Context) {
	spots, err := h.engine.ListAvailableSpots(c.Request.Context(), c.Param("lot_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}

// ListLayout handles GET /api/lots/:lot_id/spots.
func (h *Handler) ListLayout(c *gin.Context) {
	spots, err := h.layouts.ListLayout(c.Request.Context(), c.Param("lot_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}

// Audit handles GET /api/lots/:lot_id/audit.
func (h *Handler) Audit(c *gin.Context) {
	violations, err := h.engine.Audit(c.Request.Context(), c.Param("lot_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lotId": c.Param("lot_id"), "violations": violations})
}

// GetSpot handles GET /api/spots/:id.
func (h *Handler) GetSpot(c *gin.Context) {
	spot, err := h.engine.GetSpot(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

type setSpotStatusRequest struct {
	Status model.SpotStatus `json:"status" binding:"required"`
}

// SetSpotStatus handles PUT /api/spots/:id/status.
func (h *Handler) SetSpotStatus(c *gin.Context) {
	var req setSpotStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "status is required")
		return
	}

	spot, err := h.engine.SetSpotStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

// UpdateSpot handles PATCH /api/spots/:id.
func (h *Handler) UpdateSpot(c *gin.Context) {
	var edit layout.SpotEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		h.badRequest(c, "invalid request: "+err.Error())
		return
	}

	spot, err := h.layouts.UpdateSpot(c.Request.Context(), c.Param("id"), edit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spot)
}

// ImportLayout handles POST /api/lots/:lot_id/layout/import. The body is the
// layout file itself.
func (h *Handler) ImportLayout(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxLayoutBytes)
	raw, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "validation_error", "message": "layout file is too large"})
			return
		}
		h.badRequest(c, "could not read layout file")
		return
	}

	res, err := h.layouts.Import(c.Request.Context(), c.Param("lot_id"), raw)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusCreated
	if res.NothingToDo {
		status = http.StatusOK
	}
	c.JSON(status, res)
}

type addColumnRequest struct {
	Count  int    `json:"count" binding:"required"`
	Column string `json:"column"`
}

// AddColumn handles POST /api/lots/:lot_id/layout/columns.
func (h *Handler) AddColumn(c *gin.Context) {
	var req addColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "count is required")
		return
	}

	res, err := h.layouts.AddColumn(c.Request.Context(), c.Param("lot_id"), req.Count, req.Column)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

type addRowRequest struct {
	Count int `json:"count" binding:"required"`
	Row   int `json:"row"`
}

// AddRow handles POST /api/lots/:lot_id/layout/rows.
func (h *Handler) AddRow(c *gin.Context) {
	var req addRowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "count is required")
		return
	}

	res, err := h.layouts.AddRow(c.Request.Context(), c.Param("lot_id"), req.Count, req.Row)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}
