package videos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/killallgit/digest-api/internal/models"
)

type Repository struct {
	db *gorm.DB
}

// Ensure Repository implements VideoRepository interface
var _ VideoRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateVideo(ctx context.Context, video *models.Video) error {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("video %s already exists", video.VideoID)
		}
		return fmt.Errorf("creating video: %w", err)
	}
	return nil
}

func (r *Repository) GetVideoByID(ctx context.Context, id uint) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(id)
		}
		return nil, fmt.Errorf("getting video: %w", err)
	}
	return &video, nil
}

func (r *Repository) GetVideoByVideoID(ctx context.Context, videoID string) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).Where("video_id = ?", videoID).First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError(videoID)
		}
		return nil, fmt.Errorf("getting video by video ID: %w", err)
	}
	return &video, nil
}

func (r *Repository) GetVideosByStatus(ctx context.Context, status models.VideoStatus, limit int) ([]models.Video, error) {
	var videos []models.Video
	query := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("published_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("listing videos by status: %w", err)
	}
	return videos, nil
}

func (r *Repository) GetVideosByChannel(ctx context.Context, channelID string, page, limit int) ([]models.Video, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	base := r.db.WithContext(ctx).Model(&models.Video{}).Where("channel_id = ?", channelID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting channel videos: %w", err)
	}

	var videos []models.Video
	if err := base.
		Order("published_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&videos).Error; err != nil {
		return nil, 0, fmt.Errorf("listing channel videos: %w", err)
	}
	return videos, total, nil
}

func (r *Repository) CountByStatus(ctx context.Context, status models.VideoStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Video{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting videos by status: %w", err)
	}
	return count, nil
}

func (r *Repository) GetOldestByStatus(ctx context.Context, status models.VideoStatus) (*models.Video, error) {
	var video models.Video
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("published_at ASC").
		First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting oldest video: %w", err)
	}
	return &video, nil
}

func (r *Repository) UpdateVideo(ctx context.Context, video *models.Video) error {
	result := r.db.WithContext(ctx).Save(video)
	if result.Error != nil {
		return fmt.Errorf("updating video: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError(video.ID)
	}
	return nil
}

func (r *Repository) DeleteVideo(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Video{}, id)
	if result.Error != nil {
		return fmt.Errorf("deleting video: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError(id)
	}
	return nil
}
