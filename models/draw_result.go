package models

import "time"

// DrawResult - неизменяемая запись одного исполнения розыгрыша.
// Повторный запуск создаёт новую запись, старая никогда не мутируется.
type DrawResult struct {
	ID          int64          `json:"id" db:"id"`
	ConfigID    int            `json:"config_id" db:"config_id"`
	EventID     int            `json:"event_id" db:"event_id"`
	TenantID    int            `json:"tenant_id" db:"tenant_id"`
	ExecutedAt  time.Time      `json:"executed_at" db:"executed_at"`
	ExecutedBy  int            `json:"executed_by" db:"executed_by"`
	Winners     []Winner       `json:"winners" db:"-"`
	Stats       DrawStatistics `json:"statistics" db:"-"`
}

// Winner is one selected participant within a DrawResult.
// Position is the overall selection order across tiers.
type Winner struct {
	ID             int64     `json:"id" db:"id"`
	ResultID       int64     `json:"result_id" db:"result_id"`
	Tier           TierLabel `json:"tier" db:"tier_label"`
	EntryID        int64     `json:"entry_id" db:"entry_id"`
	ParticipantKey string    `json:"participant_key" db:"participant_key"`
	DisplayName    string    `json:"display_name" db:"display_name"`
	Position       int       `json:"position" db:"position"`
	Revoked        bool      `json:"revoked" db:"-"`
	RevokedReason  *string   `json:"revoked_reason,omitempty" db:"-"`
}

// WinnerRevocation is an append-only record of an organizer revoking a prize.
// It references the winner row; the DrawResult itself is never touched.
type WinnerRevocation struct {
	ID        int64     `json:"id" db:"id"`
	ResultID  int64     `json:"result_id" db:"result_id"`
	WinnerID  int64     `json:"winner_id" db:"winner_id"`
	EventID   int       `json:"event_id" db:"event_id"`
	Reason    string    `json:"reason" db:"reason"`
	RevokedBy int       `json:"revoked_by" db:"revoked_by"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// DrawStatistics is the snapshot persisted with every DrawResult.
type DrawStatistics struct {
	TotalEntries       int               `json:"total_entries"`
	UniqueParticipants int               `json:"unique_participants"`
	WinnersByTier      map[TierLabel]int `json:"winners_by_tier"`
	// ParticipationRate is unique participants over total entries; attendance
	// tracking lives outside the engine, so the fallback ratio is always used.
	ParticipationRate float64 `json:"participation_rate"`
}
