package channels

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/killallgit/digest-api/internal/models"
)

type service struct {
	repo ChannelRepository
}

// Ensure service implements ChannelService interface
var _ ChannelService = (*service)(nil)

// NewService creates a channel subscription service
func NewService(repo ChannelRepository) ChannelService {
	return &service{repo: repo}
}

func (s *service) Subscribe(ctx context.Context, channelID, title string) (*models.Channel, error) {
	existing, err := s.repo.GetChannelByChannelID(ctx, channelID)
	if err == nil {
		if existing.Active {
			return existing, nil
		}
		existing.Active = true
		if title != "" {
			existing.Title = title
		}
		if err := s.repo.UpdateChannel(ctx, existing); err != nil {
			return nil, err
		}
		log.Printf("[INFO] Reactivated channel %s", channelID)
		return existing, nil
	}
	if !errors.Is(err, ErrChannelNotFound) {
		return nil, err
	}

	channel := &models.Channel{
		ChannelID:    channelID,
		Title:        title,
		Active:       true,
		SubscribedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateChannel(ctx, channel); err != nil {
		return nil, err
	}
	log.Printf("[INFO] Subscribed to channel %s: %s", channelID, title)
	return channel, nil
}

func (s *service) Unsubscribe(ctx context.Context, channelID string) error {
	channel, err := s.repo.GetChannelByChannelID(ctx, channelID)
	if err != nil {
		return err
	}
	channel.Active = false
	return s.repo.UpdateChannel(ctx, channel)
}

func (s *service) SetManualCategory(ctx context.Context, channelID string, category *models.Category) error {
	if category != nil && !category.Valid() {
		return fmt.Errorf("unknown category %q", *category)
	}

	channel, err := s.repo.GetChannelByChannelID(ctx, channelID)
	if err != nil {
		return err
	}
	channel.ManualCategory = category
	return s.repo.UpdateChannel(ctx, channel)
}

func (s *service) MarkChecked(ctx context.Context, channel *models.Channel) error {
	now := time.Now().UTC()
	channel.LastCheckedAt = &now
	return s.repo.UpdateChannel(ctx, channel)
}

func (s *service) DueForCheck(ctx context.Context, interval time.Duration) ([]models.Channel, error) {
	return s.repo.GetChannelsDueForCheck(ctx, time.Now().UTC().Add(-interval))
}

func (s *service) List(ctx context.Context) ([]models.Channel, error) {
	return s.repo.GetActiveChannels(ctx)
}

func (s *service) Get(ctx context.Context, channelID string) (*models.Channel, error) {
	return s.repo.GetChannelByChannelID(ctx, channelID)
}
