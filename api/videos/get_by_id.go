package videos

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
	videosService "github.com/killallgit/digest-api/internal/services/videos"
)

// GetByID returns a single video by its platform ID
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		videoID := c.Param("id")

		video, err := deps.VideoService.Get(c.Request.Context(), videoID)
		if err != nil {
			if videosService.IsNotFound(err) {
				c.JSON(http.StatusNotFound, types.ErrorResponse("Video not found"))
			} else {
				log.Printf("[ERROR] Failed to fetch video %s: %v", videoID, err)
				c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to fetch video"))
			}
			return
		}

		c.JSON(http.StatusOK, types.SingleVideoResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Video:        video,
		})
	}
}
