package channels

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
	"github.com/killallgit/digest-api/internal/models"
)

// PostSubscribe adds a channel to the watch list and queues an
// immediate feed check for it
func PostSubscribe(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req types.SubscribeChannelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse("channel_id is required"))
			return
		}

		channel, err := deps.ChannelService.Subscribe(c.Request.Context(), req.ChannelID, req.Title)
		if err != nil {
			log.Printf("[ERROR] Failed to subscribe channel %s: %v", req.ChannelID, err)
			c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to subscribe channel"))
			return
		}

		// Best effort: a duplicate pending sync for the channel is fine to skip
		if deps.JobService != nil {
			payload := models.JobPayload{"channel_id": channel.ChannelID}
			if _, err := deps.JobService.EnqueueUniqueJob(c.Request.Context(), models.JobTypeChannelSync, payload, "channel_id"); err != nil {
				log.Printf("[WARN] Failed to enqueue sync for channel %s: %v", channel.ChannelID, err)
			}
		}

		c.JSON(http.StatusCreated, types.SingleChannelResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK, Message: "Channel subscribed"},
			Channel:      channel,
		})
	}
}
