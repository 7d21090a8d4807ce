package types

import (
	"github.com/killallgit/digest-api/internal/database"
	"github.com/killallgit/digest-api/internal/services/channels"
	"github.com/killallgit/digest-api/internal/services/digests"
	"github.com/killallgit/digest-api/internal/services/jobs"
	"github.com/killallgit/digest-api/internal/services/videos"
	"github.com/killallgit/digest-api/internal/services/workers"
)

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB             *database.DB
	ChannelService channels.ChannelService
	VideoService   videos.VideoService
	DigestService  digests.DigestService
	JobService     jobs.Service
	WorkerPool     *workers.WorkerPool
}
