package digests

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// GetAll returns digest history, newest first
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		if page < 1 {
			page = 1
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
		if limit < 1 {
			limit = defaultPageSize
		}
		if limit > maxPageSize {
			limit = maxPageSize
		}

		digests, total, err := deps.DigestService.List(c.Request.Context(), page, limit)
		if err != nil {
			log.Printf("[ERROR] Failed to list digests: %v", err)
			c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to list digests"))
			return
		}

		c.JSON(http.StatusOK, types.DigestsResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Digests:      digests,
			Count:        len(digests),
			Total:        total,
			Page:         page,
		})
	}
}
