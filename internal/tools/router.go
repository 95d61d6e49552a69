package tools

import (
	"github.com/gin-gonic/gin"
)

// SetupToolRoutes mounts the tool-call surface. Auth and rate-limit
// middleware are applied by the caller so deployments without a JWT secret
// or Redis still get a working engine.
func SetupToolRoutes(router *gin.RouterGroup, controller Controller, middlewares ...gin.HandlerFunc) {
	tools := router.Group("/tools")
	tools.Use(middlewares...)
	{
		tools.GET("", controller.ListOperations)      // GET  /api/v1/tools - list operation definitions
		tools.POST("/:operation", controller.Execute) // POST /api/v1/tools/:operation - run one operation
	}
}
