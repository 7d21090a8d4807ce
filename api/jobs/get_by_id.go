package jobs

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
	jobsService "github.com/killallgit/digest-api/internal/services/jobs"
)

// GetByID returns a single job by its queue ID
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse("Invalid job ID"))
			return
		}

		job, err := deps.JobService.GetJob(c.Request.Context(), uint(jobID))
		if err != nil {
			if errors.Is(err, jobsService.ErrJobNotFound) {
				c.JSON(http.StatusNotFound, types.ErrorResponse("Job not found"))
			} else {
				log.Printf("[ERROR] Failed to fetch job %d: %v", jobID, err)
				c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to fetch job"))
			}
			return
		}

		c.JSON(http.StatusOK, types.JobResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Job:          job,
		})
	}
}
