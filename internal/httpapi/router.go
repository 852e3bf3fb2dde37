// Package httpapi exposes the record store over HTTP with gin. Every table
// is served under /api/:table with the same CRUD routes.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/pmstore/internal/config"
	"github.com/mesh-intelligence/pmstore/pkg/types"
)

// Version is reported by the root banner.
var Version = "dev"

// NewRouter builds the gin engine for tables. In production mode gin runs in
// release mode.
func NewRouter(tables types.Tables, logger *logrus.Logger, cfg config.ServerConfig) *gin.Engine {
	if cfg.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestID())
	r.Use(Logger(logger))
	r.Use(gin.Recovery())
	r.Use(CORS(cfg.CORS))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pmstore project management API",
			"version": Version,
			"tables":  types.StandardTableNames,
		})
	})

	h := NewHandler(tables)
	api := r.Group("/api")
	{
		api.GET("/:table", h.List)
		api.POST("/:table", h.Create)
		api.GET("/:table/:id", h.Get)
		api.PUT("/:table/:id", h.Update)
		api.PATCH("/:table/:id", h.Update)
		api.DELETE("/:table/:id", h.Delete)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{Code: http.StatusNotFound, Message: "route not found"})
	})
	return r
}
