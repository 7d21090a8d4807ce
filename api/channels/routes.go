package channels

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
)

// RegisterRoutes registers channel subscription routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// GET /api/v1/channels - List watched channels
	router.GET("", GetAll(deps))

	// POST /api/v1/channels - Subscribe to a channel
	router.POST("", PostSubscribe(deps))

	// GET /api/v1/channels/:id - Get a single channel
	router.GET("/:id", GetByID(deps))

	// DELETE /api/v1/channels/:id - Unsubscribe without deleting videos
	router.DELETE("/:id", DeleteChannel(deps))

	// PUT /api/v1/channels/:id/category - Pin or clear the manual category
	router.PUT("/:id/category", PutCategory(deps))
}
