package channels

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
	channelsService "github.com/killallgit/digest-api/internal/services/channels"
)

// DeleteChannel deactivates a channel. Videos already collected stay in
// the pipeline.
func DeleteChannel(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		channelID := c.Param("id")

		if err := deps.ChannelService.Unsubscribe(c.Request.Context(), channelID); err != nil {
			if errors.Is(err, channelsService.ErrChannelNotFound) {
				c.JSON(http.StatusNotFound, types.ErrorResponse("Channel not found"))
			} else {
				log.Printf("[ERROR] Failed to unsubscribe channel %s: %v", channelID, err)
				c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to unsubscribe channel"))
			}
			return
		}

		c.JSON(http.StatusOK, types.BaseResponse{
			Status:  types.StatusOK,
			Message: "Channel unsubscribed",
		})
	}
}
