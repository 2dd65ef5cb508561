package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"valet-parking-backend/internal/mw"
)

// RouterOptions carries the shared middleware state owned by the caller.
type RouterOptions struct {
	Limiter  *mw.IPRateLimiter
	Cache    *cache.Cache
	CacheTTL time.Duration
	Log      logrus.FieldLogger
}

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.Logger(opts.Log))

	caching := mw.Cache(opts.Cache, opts.CacheTTL)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(opts.Limiter), mw.Invalidate(opts.Cache))
	{
		api.POST("/checkins", h.CheckIn)
		api.POST("/checkouts", h.CheckOutByPlate)

		api.GET("/vehicles/active", h.ListActiveVehicles)
		api.GET("/vehicles/search", h.FindActiveVehicle)
		api.GET("/vehicles/:id", h.GetVehicle)
		api.POST("/vehicles/:id/checkout", h.CheckOut)

		api.GET("/lots/:lot_id/spots", caching, h.ListLayout)
		api.GET("/lots/:lot_id/spots/available", h.ListAvailableSpots)
		api.GET("/lots/:lot_id/audit", h.Audit)
		api.POST("/lots/:lot_id/layout/import", h.ImportLayout)
		api.POST("/lots/:lot_id/layout/columns", h.AddColumn)
		api.POST("/lots/:lot_id/layout/rows", h.AddRow)

		api.GET("/spots/:id", h.GetSpot)
		api.PUT("/spots/:id/status", h.SetSpotStatus)
		api.PATCH("/spots/:id", h.UpdateSpot)

		api.POST("/customers", h.RegisterCustomer)
		api.GET("/customers", h.SearchCustomers)
		api.GET("/customers/:id", h.GetCustomer)
		api.GET("/customers/:id/vehicles", h.CustomerVehicles)

		api.GET("/ws", h.Events)
	}

	return r
}
