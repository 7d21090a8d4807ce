package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

// TriggerReason records why a digest fired
type TriggerReason string

const (
	TriggerTimeElapsed     TriggerReason = "time_elapsed"
	TriggerVolumeThreshold TriggerReason = "volume_threshold"
	TriggerManual          TriggerReason = "manual"
)

// DeliveryStatus tracks the outbound mail state of a digest
type DeliveryStatus string

const (
	DeliveryStatusPending DeliveryStatus = "pending"
	DeliveryStatusSent    DeliveryStatus = "sent"
	DeliveryStatusFailed  DeliveryStatus = "failed"
)

// CategoryCounts is a per-category video count stored as JSON
type CategoryCounts map[string]int

// Value implements driver.Valuer for JSON columns
func (c CategoryCounts) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

// Scan implements sql.Scanner for JSON columns
func (c *CategoryCounts) Scan(value interface{}) error {
	if value == nil {
		*c = make(CategoryCounts)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}

	return json.Unmarshal(bytes, c)
}

// DigestHistory records one fired digest. Records are append-only and
// immutable after creation except for the delivery fields.
type DigestHistory struct {
	gorm.Model
	PeriodStart time.Time `json:"period_start" gorm:"not null"`
	PeriodEnd   time.Time `json:"period_end" gorm:"not null"`

	TriggerReason TriggerReason `json:"trigger_reason" gorm:"not null"`

	VideoCount           int            `json:"video_count" gorm:"default:0"`
	TotalDurationSeconds int            `json:"total_duration_seconds" gorm:"default:0"`
	CategoryCounts       CategoryCounts `json:"category_counts" gorm:"type:json"`

	// Delivery tracking
	DeliveryStatus DeliveryStatus `json:"delivery_status" gorm:"default:'pending'"`
	DeliveryError  string         `json:"delivery_error,omitempty" gorm:"type:text"`
	DeliveryID     string         `json:"delivery_id,omitempty"`
	Recipient      string         `json:"recipient"`
	SentAt         *time.Time     `json:"sent_at"`

	Videos []Video `json:"videos,omitempty" gorm:"foreignKey:DigestID"`
}

// TableName specifies the table name for GORM
func (DigestHistory) TableName() string {
	return "digest_history"
}
