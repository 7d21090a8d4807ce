package jobs

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
)

// RegisterRoutes registers job queue routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// GET /api/v1/jobs?status=&limit= - List jobs by status
	router.GET("", GetAll(deps))

	// GET /api/v1/jobs/:id - Get a single job
	router.GET("/:id", GetByID(deps))

	// POST /api/v1/jobs/:id/retry - Re-queue a failed job
	router.POST("/:id/retry", PostRetry(deps))
}
