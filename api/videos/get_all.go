package videos

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

// GetAll returns videos for a channel, newest first
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		channelID := c.Query("channel_id")
		if channelID == "" {
			c.JSON(http.StatusBadRequest, types.ErrorResponse("channel_id query parameter is required"))
			return
		}

		page, limit := parsePagination(c)

		videos, total, err := deps.VideoService.List(c.Request.Context(), channelID, page, limit)
		if err != nil {
			log.Printf("[ERROR] Failed to list videos for channel %s: %v", channelID, err)
			c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to list videos"))
			return
		}

		c.JSON(http.StatusOK, types.VideosResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Videos:       videos,
			Count:        len(videos),
			Total:        total,
			Page:         page,
		})
	}
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultPageSize)))
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	return page, limit
}
