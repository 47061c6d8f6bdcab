package server

import (
	"net/http"

	"github.com/fruverhq/fruver-pos/config"
	audithandler "github.com/fruverhq/fruver-pos/internal/audit/handler"
	"github.com/fruverhq/fruver-pos/internal/auth"
	authhandler "github.com/fruverhq/fruver-pos/internal/auth/handler"
	"github.com/fruverhq/fruver-pos/internal/model"
	producthandler "github.com/fruverhq/fruver-pos/internal/product/handler"
	salehandler "github.com/fruverhq/fruver-pos/internal/sale/handler"
	"github.com/fruverhq/fruver-pos/internal/server/middleware"
	tillhandler "github.com/fruverhq/fruver-pos/internal/till/handler"
	userhandler "github.com/fruverhq/fruver-pos/internal/user/handler"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Auth     *authhandler.AuthHandler
	Users    *userhandler.UserHandler
	Products *producthandler.ProductHandler
	Tills    *tillhandler.TillHandler
	Sales    *salehandler.SaleHandler
	Audit    *audithandler.AuditHandler
}

func NewRouter(cfg *config.Config, tokens *auth.TokenManager, h Handlers) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(auth.RequireAuth(tokens))

	users := authed.Group("/users", auth.RequireRole(model.RoleAdmin))
	{
		users.POST("", h.Users.Create)
		users.GET("", h.Users.List)
		users.PUT("/:id", h.Users.Update)
		users.DELETE("/:id", h.Users.Deactivate)
	}

	products := authed.Group("/products")
	{
		products.GET("", h.Products.List)
		products.GET("/:id", h.Products.Get)

		manage := auth.RequireRole(model.RoleSupervisor)
		products.POST("", manage, h.Products.Create)
		products.PUT("/:id", manage, h.Products.Update)
		products.DELETE("/:id", manage, h.Products.Delete)
		products.POST("/:id/stock-adjustment", manage, h.Products.AdjustStock)
	}

	tills := authed.Group("/tills")
	{
		tills.POST("/open", h.Tills.Open)
		tills.GET("", h.Tills.List)
		tills.GET("/:id", h.Tills.Get)
		tills.POST("/:id/close", h.Tills.Close)
		tills.PATCH("/:id/totals", auth.RequireRole(model.RoleSupervisor), h.Tills.UpdateTotals)
	}

	sales := authed.Group("/sales")
	{
		sales.POST("", h.Sales.Commit)
		sales.GET("", h.Sales.List)
		sales.PATCH("/:id/void", auth.RequireRole(model.RoleSupervisor), h.Sales.Void)
	}

	authed.GET("/audit-logs", auth.RequireRole(model.RoleSupervisor), h.Audit.List)

	return r
}
