package channels

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
	channelsService "github.com/killallgit/digest-api/internal/services/channels"
)

// GetAll returns all actively watched channels
func GetAll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		channels, err := deps.ChannelService.List(c.Request.Context())
		if err != nil {
			log.Printf("[ERROR] Failed to list channels: %v", err)
			c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to list channels"))
			return
		}

		c.JSON(http.StatusOK, types.ChannelsResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Channels:     channels,
			Count:        len(channels),
		})
	}
}

// GetByID returns a single channel by its platform ID
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		channelID := c.Param("id")

		channel, err := deps.ChannelService.Get(c.Request.Context(), channelID)
		if err != nil {
			if errors.Is(err, channelsService.ErrChannelNotFound) {
				c.JSON(http.StatusNotFound, types.ErrorResponse("Channel not found"))
			} else {
				log.Printf("[ERROR] Failed to fetch channel %s: %v", channelID, err)
				c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to fetch channel"))
			}
			return
		}

		c.JSON(http.StatusOK, types.SingleChannelResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Channel:      channel,
		})
	}
}
