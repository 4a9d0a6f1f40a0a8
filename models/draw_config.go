package models

import (
	"encoding/json"
	"time"
)

// DrawConfiguration - активный набор правил розыгрыша для события.
// В БД не больше одной активной конфигурации на событие (частичный
// уникальный индекс по event_id WHERE is_active).
type DrawConfiguration struct {
	ID                       int             `json:"id" db:"id"`
	EventID                  int             `json:"event_id" db:"event_id"`
	TenantID                 int             `json:"tenant_id" db:"tenant_id"`
	Tiers                    []PrizeTier     `json:"prize_tiers" db:"-"`
	MaxEntriesPerParticipant int             `json:"max_entries_per_participant" db:"max_entries_per_participant"`
	RequirePhotoUpload       bool            `json:"require_photo_upload" db:"require_photo_upload"`
	PreventDuplicateWinners  bool            `json:"prevent_duplicate_winners" db:"prevent_duplicate_winners"`
	AllowAnonymousWinners    bool            `json:"allow_anonymous_winners" db:"allow_anonymous_winners"`
	Presentation             json.RawMessage `json:"presentation,omitempty" db:"presentation"`
	IsActive                 bool            `json:"is_active" db:"is_active"`
	CreatedBy                int             `json:"created_by" db:"created_by"`
	CreatedAt                time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at" db:"updated_at"`
}

// TotalCapacity returns the sum of all tier winner counts.
func (c *DrawConfiguration) TotalCapacity() int {
	total := 0
	for _, tier := range c.Tiers {
		total += tier.Count
	}
	return total
}
