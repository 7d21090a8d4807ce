package models

import (
	"encoding/json"
	"fmt"
)

// Category is the closed set of digest categories. Any value outside the
// set is a decode error, never coerced to a default.
type Category string

const (
	CategoryAICodingTools   Category = "AI Coding Tools"
	CategoryCodingAI        Category = "Coding/AI"
	CategoryBoardGames      Category = "Board Games"
	CategoryHealth          Category = "Health"
	CategorySport           Category = "Sport"
	CategoryRelationships   Category = "Relationships"
	CategoryBeachVolleyball Category = "Beach Volleyball"
	CategoryOther           Category = "Other"
)

// categoryPriority maps every category to its digest ordering rank.
// Lower rank sorts first; the catch-all category is always last.
var categoryPriority = map[Category]int{
	CategoryAICodingTools:   0,
	CategoryCodingAI:        1,
	CategoryBoardGames:      2,
	CategoryHealth:          3,
	CategorySport:           4,
	CategoryRelationships:   5,
	CategoryBeachVolleyball: 6,
	CategoryOther:           99,
}

// AllCategories returns the categories in priority order.
func AllCategories() []Category {
	return []Category{
		CategoryAICodingTools,
		CategoryCodingAI,
		CategoryBoardGames,
		CategoryHealth,
		CategorySport,
		CategoryRelationships,
		CategoryBeachVolleyball,
		CategoryOther,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	_, ok := categoryPriority[c]
	return ok
}

// Priority returns the digest ordering rank for the category.
func (c Category) Priority() int {
	rank, ok := categoryPriority[c]
	if !ok {
		return len(categoryPriority)
	}
	return rank
}

// ParseCategory validates a raw string against the category set.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", raw)
	}
	return c, nil
}

// UnmarshalJSON enforces set membership during decoding.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCategory(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
