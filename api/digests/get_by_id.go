package digests

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/killallgit/digest-api/api/types"
	digestsService "github.com/killallgit/digest-api/internal/services/digests"
)

// GetByID returns a digest with the videos it contained
func GetByID(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		digestID, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, types.ErrorResponse("Invalid digest ID"))
			return
		}

		digest, videos, err := deps.DigestService.Get(c.Request.Context(), uint(digestID))
		if err != nil {
			if errors.Is(err, digestsService.ErrDigestNotFound) {
				c.JSON(http.StatusNotFound, types.ErrorResponse("Digest not found"))
			} else {
				log.Printf("[ERROR] Failed to fetch digest %d: %v", digestID, err)
				c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to fetch digest"))
			}
			return
		}

		c.JSON(http.StatusOK, types.SingleDigestResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Digest:       digest,
			Videos:       videos,
		})
	}
}

// GetLatest returns the most recent digest
func GetLatest(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		digest, err := deps.DigestService.Latest(c.Request.Context())
		if err != nil {
			log.Printf("[ERROR] Failed to fetch latest digest: %v", err)
			c.JSON(http.StatusInternalServerError, types.ErrorResponse("Failed to fetch latest digest"))
			return
		}
		if digest == nil {
			c.JSON(http.StatusNotFound, types.ErrorResponse("No digest has been generated yet"))
			return
		}

		c.JSON(http.StatusOK, types.SingleDigestResponse{
			BaseResponse: types.BaseResponse{Status: types.StatusOK},
			Digest:       digest,
		})
	}
}
