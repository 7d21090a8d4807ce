package digests

import (
	"sort"

	"github.com/killallgit/digest-api/internal/models"
)

// Payload is the assembled digest handed to delivery
type Payload struct {
	Digest   *models.DigestHistory
	Sections []Section
}

// Section groups one category's videos, oldest first
type Section struct {
	Category models.Category
	Videos   []models.Video
}

// compose orders videos into category sections. Sections follow the
// category priority ranking; within a section videos run in publish
// order, oldest first.
func compose(digest *models.DigestHistory, videos []models.Video) *Payload {
	byCategory := make(map[models.Category][]models.Video)
	for _, v := range videos {
		byCategory[v.Category] = append(byCategory[v.Category], v)
	}

	sections := make([]Section, 0, len(byCategory))
	for category, vids := range byCategory {
		sort.SliceStable(vids, func(i, j int) bool {
			return vids[i].PublishedAt.Before(vids[j].PublishedAt)
		})
		sections = append(sections, Section{Category: category, Videos: vids})
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].Category.Priority() < sections[j].Category.Priority()
	})

	return &Payload{Digest: digest, Sections: sections}
}

// digestStats derives the aggregate numbers stored on the digest record
func digestStats(videos []models.Video) (count int, totalDuration int, categoryCounts models.CategoryCounts) {
	categoryCounts = make(models.CategoryCounts)
	for _, v := range videos {
		count++
		totalDuration += v.DurationSeconds
		categoryCounts[string(v.Category)]++
	}
	return count, totalDuration, categoryCounts
}
