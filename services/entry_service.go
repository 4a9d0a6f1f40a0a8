package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/snapfest/luckydraw/models"
	"github.com/snapfest/luckydraw/repositories"
)

type EntryService interface {
	RegisterEntry(ctx context.Context, input RegisterEntryInput) (*models.Entry, error)
	ListEligibleEntries(ctx context.Context, eventID int) ([]*models.Entry, error)
	CountEntries(ctx context.Context, eventID int) (int, error)
	CountUniqueParticipants(ctx context.Context, eventID int) (int, error)
}

type RegisterEntryInput struct {
	EventID                int     `json:"event_id"`
	TenantID               int     `json:"tenant_id"`
	ParticipantUserID      *int    `json:"participant_user_id,omitempty"`
	ParticipantFingerprint *string `json:"participant_fingerprint,omitempty"`
	DisplayName            string  `json:"display_name"`
	IsAnonymous            bool    `json:"is_anonymous"`
	SourcePhotoID          *int64  `json:"source_photo_id,omitempty"`
}

type entryService struct {
	entryRepo  repositories.EntryRepository
	configRepo repositories.ConfigRepository
}

func NewEntryService(entryRepo repositories.EntryRepository, configRepo repositories.ConfigRepository) EntryService {
	return &entryService{
		entryRepo:  entryRepo,
		configRepo: configRepo,
	}
}

// RegisterEntry records one participation for the event. Anonymous entries
// are rejected here, at creation time, when the active configuration
// disallows anonymous winners - not silently dropped at draw time.
func (s *entryService) RegisterEntry(ctx context.Context, input RegisterEntryInput) (*models.Entry, error) {
	if input.ParticipantUserID == nil && (input.ParticipantFingerprint == nil || *input.ParticipantFingerprint == "") {
		return nil, fmt.Errorf("%w: participant identity is required", ErrValidationFailed)
	}

	cfg, err := s.configRepo.FindActiveByEvent(ctx, input.EventID)
	if err != nil {
		if errors.Is(err, repositories.ErrConfigurationNotFound) {
			// Eligibility rules are unknown until the organizer configures the
			// draw, so entries cannot be accepted yet.
			return nil, ErrNoActiveConfiguration
		}
		return nil, fmt.Errorf("failed to load active configuration: %w", err)
	}

	if input.IsAnonymous && !cfg.AllowAnonymousWinners {
		return nil, ErrIneligibleAnonymous
	}

	entry := &models.Entry{
		EventID:                input.EventID,
		TenantID:               input.TenantID,
		ParticipantUserID:      input.ParticipantUserID,
		ParticipantFingerprint: input.ParticipantFingerprint,
		DisplayName:            input.DisplayName,
		IsAnonymous:            input.IsAnonymous,
		SourcePhotoID:          input.SourcePhotoID,
	}

	// Cap is counted per participant identity, not per photo.
	held, err := s.entryRepo.CountByEventAndParticipant(ctx, input.EventID, entry.ParticipantKey())
	if err != nil {
		return nil, fmt.Errorf("failed to count participant entries: %w", err)
	}
	if held >= cfg.MaxEntriesPerParticipant {
		return nil, ErrEntryCapExceeded
	}

	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListEligibleEntries returns every entry of the event. Eligibility beyond
// existence (anonymous exclusion, photo gating) is re-checked at draw time so
// configuration changes between registration and draw apply retroactively.
func (s *entryService) ListEligibleEntries(ctx context.Context, eventID int) ([]*models.Entry, error) {
	return s.entryRepo.ListByEvent(ctx, nil, eventID)
}

func (s *entryService) CountEntries(ctx context.Context, eventID int) (int, error) {
	return s.entryRepo.CountByEvent(ctx, eventID)
}

func (s *entryService) CountUniqueParticipants(ctx context.Context, eventID int) (int, error) {
	return s.entryRepo.CountUniqueParticipants(ctx, eventID)
}
