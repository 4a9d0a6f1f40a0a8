package models

// EventStats - агрегаты для live-дашборда события.
type EventStats struct {
	EventID            int               `json:"event_id"`
	TotalEntries       int               `json:"total_entries"`
	UniqueParticipants int               `json:"unique_participants"`
	WinnersByTier      map[TierLabel]int `json:"winners_by_tier,omitempty"`
	ParticipationRate  float64           `json:"participation_rate"`
	HasResult          bool              `json:"has_result"`
}
