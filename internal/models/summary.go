package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// TimestampNote marks a notable point in a video. Offsets are absolute
// seconds from the start of the source video.
type TimestampNote struct {
	OffsetSeconds int    `json:"offset_seconds"`
	Description   string `json:"description"`
}

// FormatOffset renders the offset as MM:SS or H:MM:SS.
func (t TimestampNote) FormatOffset() string {
	hours := t.OffsetSeconds / 3600
	minutes := (t.OffsetSeconds % 3600) / 60
	seconds := t.OffsetSeconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

// Summary is the structured model output stored alongside a video.
type Summary struct {
	Category        Category        `json:"category"`
	CoreMessage     string          `json:"core_message"`
	DetailedSummary string          `json:"detailed_summary"`
	KeyTakeaways    []string        `json:"key_takeaways"`
	Timestamps      []TimestampNote `json:"timestamps"`
	ActionItems     []string        `json:"action_items"`
}

// Validate checks the structural invariants of a decoded summary.
func (s *Summary) Validate() error {
	if !s.Category.Valid() {
		return fmt.Errorf("summary category %q is not in the category set", s.Category)
	}
	if s.CoreMessage == "" {
		return errors.New("summary core_message is empty")
	}
	if s.DetailedSummary == "" {
		return errors.New("summary detailed_summary is empty")
	}
	if len(s.KeyTakeaways) == 0 {
		return errors.New("summary key_takeaways is empty")
	}
	return nil
}

// Value implements driver.Valuer so a Summary can live in a JSON column.
func (s *Summary) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSON columns.
func (s *Summary) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		if str, isStr := value.(string); isStr {
			bytes = []byte(str)
		} else {
			return errors.New("type assertion to []byte failed")
		}
	}

	return json.Unmarshal(bytes, s)
}
