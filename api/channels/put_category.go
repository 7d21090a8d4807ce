package channels

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
	"github.com/killallgit/digest-api/internal/models"
	channelsService "github.com/killallgit/digest-api/internal/services/channels"
)

// PutCategory pins every video of the channel to one category, or
// clears the override when the body carries a null category
func PutCategory(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		channelID := c.Param("id")

		var req types.SetCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse("Invalid request body"))
			return
		}

		var category *models.Category
		if req.Category != nil {
			parsed, err := models.ParseCategory(*req.Category)
			if err != nil {
				c.JSON(http.StatusBadRequest, types.ErrorResponse("Unknown category: "+*req.Category))
				return
			}
			category = &parsed
		}

		if err := deps.ChannelService.SetManualCategory(c.Request.Context(), channelID, category); err != nil {
			if errors.Is(err, channelsService.ErrChannelNotFound) {
				c.JSON(http.StatusNotFound, types.ErrorResponse("Channel not found"))
			} else {
				log.Printf("[ERROR] Failed to set category for channel %s: %v", channelID, err)
				c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to set category"))
			}
			return
		}

		message := "Category override cleared"
		if category != nil {
			message = "Category override set"
		}

		c.JSON(http.StatusOK, types.BaseResponse{
			Status:  types.StatusOK,
			Message: message,
		})
	}
}
