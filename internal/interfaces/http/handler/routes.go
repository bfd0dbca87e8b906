package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	orders.POST("", h.Create)
	orders.GET("/:id", h.Get)
	orders.GET("/:id/shipments", h.Shipments)
}

// RegisterRoutes registers the shipment and stock routes
func (h *ShipmentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shipments := rg.Group("/shipments")
	shipments.POST("", h.Create)
	shipments.GET("/:no", h.Get)
	shipments.PUT("/:no/destination", h.UpdateDestination)
	shipments.GET("/:no/status", h.Status)

	rg.POST("/stock/purchases", h.PurchaseStock)
}

// RegisterRoutes registers the carrier webhook routes
func (h *CarrierWebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	carrier := rg.Group("/carrier")
	carrier.POST("/truck-arrived", h.TruckArrived)
	carrier.POST("/tracking-number", h.TrackingNumber)
	carrier.POST("/status-update", h.StatusUpdate)
	carrier.POST("/package-delivered", h.PackageDelivered)
}

// RegisterRoutes registers the world administration routes
func (h *WorldHandler) RegisterRoutes(rg *gin.RouterGroup) {
	world := rg.Group("/world")
	world.POST("/connect", h.Connect)
	world.POST("/disconnect", h.Disconnect)
	world.GET("/status", h.Status)
	world.PUT("/speed", h.SetSpeed)

	rg.GET("/outbox/:channel/dead", h.DeadLetters)
}
