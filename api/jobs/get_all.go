package jobs

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
	"github.com/killallgit/digest-api/internal/models"
)

// GetAll returns jobs filtered by status, newest first
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := models.JobStatus(c.DefaultQuery("status", string(models.JobStatusPending)))

		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		if limit < 1 || limit > 200 {
			limit = 50
		}

		jobs, err := deps.JobService.ListJobs(c.Request.Context(), status, limit)
		if err != nil {
			log.Printf("[ERROR] Failed to list jobs: %v", err)
			c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to list jobs"))
			return
		}

		c.JSON(http.StatusOK, types.JobsResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Jobs:         jobs,
			Count:        len(jobs),
		})
	}
}
