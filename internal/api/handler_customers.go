package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"valet-parking-backend/internal/customer"
)

// RegisterCustomer handles POST /api/customers.
func (h *Handler) RegisterCustomer(c *gin.Context) {
	var req customer.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "invalid request: "+err.Error())
		return
	}

	cust, err := h.customers.Register(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cust)
}

// SearchCustomers handles GET /api/customers?q=.
func (h *Handler) SearchCustomers(c *gin.Context) {
	found, err := h.customers.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, found)
}

// GetCustomer handles GET /api/customers/:id.
func (h *Handler) GetCustomer(c *gin.Context) {
	cust, err := h.customers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

// CustomerVehicles handles GET /api/customers/:id/vehicles.
func (h *Handler) CustomerVehicles(c *gin.Context) {
	vehicles, err := h.customers.Vehicles(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicles)
}
