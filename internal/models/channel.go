package models

import (
	"time"

	"gorm.io/gorm"
)

// Channel represents a subscribed channel. Channels are owned by the
// discovery side; the pipeline only reads them.
type Channel struct {
	gorm.Model
	ChannelID    string `json:"channel_id" gorm:"uniqueIndex;not null"`
	Title        string `json:"title" gorm:"not null"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Description  string `json:"description" gorm:"type:text"`

	// When set, composition uses this instead of the model category.
	ManualCategory *Category `json:"manual_category"`

	SubscribedAt  time.Time  `json:"subscribed_at"`
	LastCheckedAt *time.Time `json:"last_checked_at"`
	Active        bool       `json:"active" gorm:"default:true"`
}

// TableName specifies the table name for GORM
func (Channel) TableName() string {
	return "channels"
}
