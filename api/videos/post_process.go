package videos

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
	"github.com/killallgit/digest-api/internal/models"
	videosService "github.com/killallgit/digest-api/internal/services/videos"
)

// PostProcess queues a video for transcript and summary processing.
// A video stuck in a failed status is reset to its pre-failure status
// with a fresh retry budget first. Re-queuing a video that already has
// a pending job returns the existing job.
func PostProcess(deps *types.Dependencies) gin.HandlerFunc {
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

		if video.Status == models.VideoStatusTranscriptFailed || video.Status == models.VideoStatusSummaryFailed {
			if err := deps.VideoService.ResetForRetry(c.Request.Context(), video); err != nil {
				log.Printf("[ERROR] Failed to reset video %s for retry: %v", videoID, err)
				c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to reset video"))
				return
			}
		}

		payload := models.JobPayload{"video_id": video.VideoID}
		job, err := deps.JobService.EnqueueUniqueJob(c.Request.Context(), models.JobTypeVideoProcess, payload, "video_id")
		if err != nil {
			log.Printf("[ERROR] Failed to enqueue processing for video %s: %v", videoID, err)
			c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to queue video"))
			return
		}

		c.JSON(http.StatusAccepted, types.JobResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusQueued, Message: "Video queued for processing"},
			Job:          job,
		})
	}
}
