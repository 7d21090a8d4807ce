package digests

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
)

// RegisterRoutes registers digest history routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// GET /api/v1/digests - List digest history
	router.GET("", GetAll(deps))

	// GET /api/v1/digests/latest - Get the most recent digest
	router.GET("/latest", GetLatest(deps))

	// GET /api/v1/digests/:id - Get a digest with its videos
	router.GET("/:id", GetByID(deps))

	// POST /api/v1/digests/trigger - Queue an immediate digest
	router.POST("/trigger", PostTrigger(deps))
}
