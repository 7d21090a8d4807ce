package videos

import (
	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
)

// RegisterRoutes registers video pipeline routes
func RegisterRoutes(router *gin.RouterGroup, deps *types.Dependencies) {
	// GET /api/v1/videos?channel_id=&page=&limit= - List videos for a channel
	router.GET("", GetAll(deps))

	// GET /api/v1/videos/:id - Get a single video with its summary
	router.GET("/:id", GetByID(deps))

	// POST /api/v1/videos/:id/process - Queue the video for processing
	router.POST("/:id/process", PostProcess(deps))
}
