package channels

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/killallgit/digest-api/internal/models"
)

// ErrChannelNotFound indicates a channel lookup that matched nothing
var ErrChannelNotFound = errors.New("channel not found")

type Repository struct {
	db *gorm.DB
}

// Ensure Repository implements ChannelRepository interface
var _ ChannelRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateChannel(ctx context.Context, channel *models.Channel) error {
	if err := r.db.WithContext(ctx).Create(channel).Error; err != nil {
		return fmt.Errorf("creating channel: %w", err)
	}
	return nil
}

func (r *Repository) GetChannelByChannelID(ctx context.Context, channelID string) (*models.Channel, error) {
	var channel models.Channel
	if err := r.db.WithContext(ctx).Where("channel_id = ?", channelID).First(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
		}
		return nil, fmt.Errorf("getting channel: %w", err)
	}
	return &channel, nil
}

func (r *Repository) GetActiveChannels(ctx context.Context) ([]models.Channel, error) {
	var channels []models.Channel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("title ASC").
		Find(&channels).Error; err != nil {
		return nil, fmt.Errorf("listing channels: %w", err)
	}
	return channels, nil
}

func (r *Repository) GetChannelsDueForCheck(ctx context.Context, checkedBefore time.Time) ([]models.Channel, error) {
	var channels []models.Channel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Where("last_checked_at IS NULL OR last_checked_at < ?", checkedBefore).
		Order("last_checked_at ASC").
		Find(&channels).Error; err != nil {
		return nil, fmt.Errorf("listing channels due for check: %w", err)
	}
	return channels, nil
}

func (r *Repository) UpdateChannel(ctx context.Context, channel *models.Channel) error {
	result := r.db.WithContext(ctx).Save(channel)
	if result.Error != nil {
		return fmt.Errorf("updating channel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrChannelNotFound, channel.ID)
	}
	return nil
}

func (r *Repository) DeleteChannel(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Channel{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting channel: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrChannelNotFound, id)
	}
	return nil
}
