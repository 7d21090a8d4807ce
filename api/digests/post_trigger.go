package digests

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
	"github.com/killallgit/digest-api/internal/models"
	"github.com/killallgit/digest-api/internal/services/jobs"
)

// PostTrigger queues an immediate digest regardless of the scheduled
// thresholds. The digest still only contains summarized videos.
func PostTrigger(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := models.JobPayload{"reason": string(models.TriggerManual)}
		job, err := deps.JobService.EnqueueUniqueJob(c.Request.Context(), models.JobTypeDigestGeneration, payload, "reason",
			jobs.WithPriority(10), jobs.WithCreatedBy("api"))
		if err != nil {
			log.Printf("[ERROR] Failed to enqueue manual digest: %v", err)
			c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to queue digest"))
			return
		}

		c.JSON(http.StatusAccepted, types.JobResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusQueued, Message: "Digest queued"},
			Job:          job,
		})
	}
}
