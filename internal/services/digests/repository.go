package digests

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/killallgit/digest-api/internal/models"
)

type Repository struct {
	db *gorm.DB
}

// Ensure Repository implements DigestRepository interface
var _ DigestRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetDigestByID(ctx context.Context, id uint) (*models.DigestHistory, error) {
	var digest models.DigestHistory
	if err := r.db.WithContext(ctx).First(&digest, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrDigestNotFound, id)
		}
		return nil, fmt.Errorf("getting digest: %w", err)
	}
	return &digest, nil
}

func (r *Repository) GetLatestDigest(ctx context.Context) (*models.DigestHistory, error) {
	var digest models.DigestHistory
	if err := r.db.WithContext(ctx).Order("created_at DESC").First(&digest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting latest digest: %w", err)
	}
	return &digest, nil
}

func (r *Repository) ListDigests(ctx context.Context, page, limit int) ([]models.DigestHistory, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&models.DigestHistory{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("counting digests: %w", err)
	}

	var digests []models.DigestHistory
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&digests).Error; err != nil {
		return nil, 0, fmt.Errorf("listing digests: %w", err)
	}
	return digests, total, nil
}

func (r *Repository) CountSummarized(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Video{}).
		Where("status = ? AND digest_id IS NULL", models.VideoStatusSummarized).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("counting summarized videos: %w", err)
	}
	return count, nil
}

func (r *Repository) GetOldestSummarizedAt(ctx context.Context) (*time.Time, error) {
	var video models.Video
	err := r.db.WithContext(ctx).
		Where("status = ? AND digest_id IS NULL", models.VideoStatusSummarized).
		Order("processed_at ASC").
		First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting oldest summarized video: %w", err)
	}
	return video.ProcessedAt, nil
}

func (r *Repository) GetDigestVideos(ctx context.Context, digestID uint) ([]models.Video, error) {
	var videos []models.Video
	if err := r.db.WithContext(ctx).
		Where("digest_id = ?", digestID).
		Order("published_at ASC").
		Find(&videos).Error; err != nil {
		return nil, fmt.Errorf("listing digest videos: %w", err)
	}
	return videos, nil
}

// ClaimVideos atomically binds up to maxVideos summarized videos to a
// new digest record. The newest videos are kept when the cap applies;
// older ones stay eligible for the next digest. The row locks keep two
// concurrent generations from claiming the same videos.
func (r *Repository) ClaimVideos(ctx context.Context, digest *models.DigestHistory, maxVideos int) ([]models.Video, error) {
	var claimed []models.Video

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND digest_id IS NULL", models.VideoStatusSummarized).
			Order("published_at DESC")
		if maxVideos > 0 {
			query = query.Limit(maxVideos)
		}
		if err := query.Find(&claimed).Error; err != nil {
			return fmt.Errorf("finding videos to claim: %w", err)
		}
		if len(claimed) == 0 {
			return ErrNoVideos
		}

		if err := tx.Create(digest).Error; err != nil {
			return fmt.Errorf("creating digest record: %w", err)
		}

		ids := make([]uint, 0, len(claimed))
		for _, v := range claimed {
			ids = append(ids, v.ID)
		}
		result := tx.Model(&models.Video{}).
			Where("id IN ? AND status = ? AND digest_id IS NULL", ids, models.VideoStatusSummarized).
			Updates(map[string]any{
				"digest_id": digest.ID,
				"status":    models.VideoStatusDigested,
			})
		if result.Error != nil {
			return fmt.Errorf("binding videos to digest: %w", result.Error)
		}
		if result.RowsAffected != int64(len(claimed)) {
			// Someone else claimed part of the set between lock and update
			return ErrConcurrencyConflict
		}

		for i := range claimed {
			claimed[i].DigestID = &digest.ID
			claimed[i].Status = models.VideoStatusDigested
		}
		return nil
	})
	if err != nil {
		if isLockConflict(err) {
			return nil, fmt.Errorf("%w: %v", ErrConcurrencyConflict, err)
		}
		return nil, err
	}
	return claimed, nil
}

func (r *Repository) UpdateDigest(ctx context.Context, digest *models.DigestHistory) error {
	result := r.db.WithContext(ctx).Save(digest)
	if result.Error != nil {
		return fmt.Errorf("updating digest: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: id %d", ErrDigestNotFound, digest.ID)
	}
	return nil
}

// isLockConflict detects the driver-level contention errors that mean a
// concurrent transaction held the rows
func isLockConflict(err error) bool {
	if errors.Is(err, ErrConcurrencyConflict) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "deadlock") ||
		strings.Contains(msg, "could not serialize")
}
