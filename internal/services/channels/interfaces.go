package channels

import (
	"context"
	"time"

	"github.com/killallgit/digest-api/internal/models"
)

// ChannelRepository defines the interface for channel data persistence
type ChannelRepository interface {
	CreateChannel(ctx context.Context, channel *models.Channel) error
	GetChannelByChannelID(ctx context.Context, channelID string) (*models.Channel, error)
	GetActiveChannels(ctx context.Context) ([]models.Channel, error)
	GetChannelsDueForCheck(ctx context.Context, checkedBefore time.Time) ([]models.Channel, error)
	UpdateChannel(ctx context.Context, channel *models.Channel) error
	DeleteChannel(ctx context.Context, id uint) error
}

// ChannelService manages channel subscriptions
type ChannelService interface {
	// Subscribe adds a channel to the watch list or reactivates it
	Subscribe(ctx context.Context, channelID, title string) (*models.Channel, error)

	// Unsubscribe deactivates a channel without deleting its videos
	Unsubscribe(ctx context.Context, channelID string) error

	// SetManualCategory pins every video of the channel to one category.
	// A nil category clears the override.
	SetManualCategory(ctx context.Context, channelID string, category *models.Category) error

	// MarkChecked records a completed feed check
	MarkChecked(ctx context.Context, channel *models.Channel) error

	// DueForCheck returns active channels whose last check is older than
	// the interval
	DueForCheck(ctx context.Context, interval time.Duration) ([]models.Channel, error)

	// List returns all active channels
	List(ctx context.Context) ([]models.Channel, error)

	// Get looks up a channel by its platform ID
	Get(ctx context.Context, channelID string) (*models.Channel, error)
}
