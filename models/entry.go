package models

import (
	"fmt"
	"strings"
	"time"
)

// Entry представляет одну единицу участия в розыгрыше.
type Entry struct {
	ID                     int64     `json:"id" db:"id"`
	EventID                int       `json:"event_id" db:"event_id"`
	TenantID               int       `json:"tenant_id" db:"tenant_id"`
	ParticipantUserID      *int      `json:"participant_user_id,omitempty" db:"participant_user_id"`
	ParticipantFingerprint *string   `json:"participant_fingerprint,omitempty" db:"participant_fingerprint"`
	DisplayName            string    `json:"display_name" db:"display_name"`
	IsAnonymous            bool      `json:"is_anonymous" db:"is_anonymous"`
	SourcePhotoID          *int64    `json:"source_photo_id,omitempty" db:"source_photo_id"`
	CreatedAt              time.Time `json:"created_at" db:"created_at"`
}

// ParticipantKey returns the pseudonymous identity an entry is counted under:
// the authenticated user id when present, the device fingerprint otherwise.
func (e *Entry) ParticipantKey() string {
	if e.ParticipantUserID != nil {
		return fmt.Sprintf("user:%d", *e.ParticipantUserID)
	}
	if e.ParticipantFingerprint != nil {
		return *e.ParticipantFingerprint
	}
	return ""
}

// DrawNumber derives the human-readable "draw number" shown to guests:
// the last 4 hex characters of the entry id, uppercased and zero-padded.
// Informational only; collisions between entries are acceptable.
func (e *Entry) DrawNumber() string {
	hex := strings.ToUpper(fmt.Sprintf("%x", e.ID))
	if len(hex) > 4 {
		hex = hex[len(hex)-4:]
	}
	return strings.Repeat("0", 4-len(hex)) + hex
}
