// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"waslhaa/internal/http/handlers"
	"waslhaa/internal/http/middleware"
	"waslhaa/internal/infra"
	"waslhaa/internal/modules/order"
	"waslhaa/internal/modules/user"
	"waslhaa/internal/modules/zone"
	"waslhaa/internal/types"
)

type RouterDeps struct {
	Orders   *order.Service
	Users    *user.Service
	Zones    *zone.Registry
	Verifier infra.TokenVerifier
	Log      *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Log), middleware.Logging(deps.Log), middleware.Metrics())

	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	orderHandler := handlers.NewOrderHandler(deps.Orders)
	driverHandler := handlers.NewDriverHandler(deps.Orders, deps.Users)
	adminHandler := handlers.NewAdminHandler(deps.Orders, deps.Users)
	userHandler := handlers.NewUserHandler(deps.Users)
	zoneHandler := handlers.NewZoneHandler(deps.Zones)

	api := r.Group("/api", middleware.Auth(deps.Verifier))
	api.GET("/zones", zoneHandler.Catalog)
	api.POST("/quotes", orderHandler.Quote)

	api.POST("/users", userHandler.Register)
	api.GET("/users/me", userHandler.Me)

	api.POST("/orders", orderHandler.Create)
	api.GET("/orders/:id", orderHandler.Get)
	api.GET("/orders/:id/history", orderHandler.History)
	api.POST("/orders/:id/cancel", orderHandler.Cancel)
	api.POST("/orders/:id/rate", orderHandler.Rate)
	api.GET("/customers/me/orders", orderHandler.ListMine)

	drivers := api.Group("/drivers", middleware.RequireRole(types.RoleDriver))
	drivers.GET("/orders/available", driverHandler.ListAvailable)
	drivers.POST("/orders/:id/accept", driverHandler.Accept)
	drivers.POST("/orders/:id/pickup", driverHandler.PickUp)
	drivers.POST("/orders/:id/deliver", driverHandler.Deliver)

	admin := api.Group("/admin", middleware.RequireRole(types.RoleAdmin))
	admin.GET("/revenue", adminHandler.Revenue)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/users/:id/status", adminHandler.SetUserStatus)

	return r
}
