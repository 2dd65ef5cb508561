package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valet-parking-backend/internal/occupancy"
)

// CheckIn handles POST /api/checkins.
func (h *Handler) CheckIn(c *gin.Context) {
	var req occupancy.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request: "+err.Error())
		return
	}

	id, err := h.engine.CheckIn(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vehicleId": id})
}

// CheckOut handles POST /api/vehicles/:id/checkout.
func (h *Handler) CheckOut(c *gin.Context) {
	if err := h.engine.CheckOut(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type checkOutByPlateRequest struct {
	LicensePlate string `json:"licensePlate" binding:"required"`
}

// CheckOutByPlate handles POST /api/checkouts.
func (h *Handler) CheckOutByPlate(c *gin.Context) {
	var req checkOutByPlateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "licensePlate is required")
		return
	}

	id, err := h.engine.CheckOutByPlate(c.Request.Context(), req.LicensePlate)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicleId": id})
}

// ListActiveVehicles handles GET /api/vehicles/active.
func (h *Handler) ListActiveVehicles(c *gin.Context) {
	vehicles, err := h.engine.ListActiveVehicles(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}

// FindActiveVehicle handles GET /api/vehicles/search?plate=.
func (h *Handler) FindActiveVehicle(c *gin.Context) {
	v, err := h.engine.FindActiveVehicle(c.Request.Context(), c.Query("plate"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// GetVehicle handles GET /api/vehicles/:id.
func (h *Handler) GetVehicle(c *gin.Context) {
	v, err := h.engine.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}
