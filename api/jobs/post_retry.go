package jobs

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
	jobsService "github.com/killallgit/digest-api/internal/services/jobs"
)

// PostRetry resets a failed job back to pending. Jobs that are still
// running or already completed are rejected.
func PostRetry(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse("Invalid job ID"))
			return
		}

		job, err := deps.JobService.RetryFailedJob(c.Request.Context(), uint(jobID))
		if err != nil {
			switch {
			case errors.Is(err, jobsService.ErrJobNotFound):
				c.JSON(http.StatusNotFound, types.ErrorResponse("Job not found"))
			case strings.Contains(err.Error(), "cannot be retried"):
				c.JSON(http.StatusConflict, types.ErrorResponse(err.Error()))
			default:
				log.Printf("[ERROR] Failed to retry job %d: %v", jobID, err)
				c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to retry job"))
			}
			return
		}

		c.JSON(http.StatusOK, types.JobResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusQueued, Message: "Job queued for retry"},
			Job:          job,
		})
	}
}
