package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/snapfest/luckydraw/models"
	"github.com/snapfest/luckydraw/repositories"
)

type ConfigService interface {
	// UpsertConfiguration создаёт конфигурацию, либо обновляет активную.
	// Пока на конфигурацию не ссылается ни один DrawResult - правки идут
	// на месте; после первого исполнения правка создаёт новую версию, а
	// старая остаётся в истории для аудита результатов.
	UpsertConfiguration(ctx context.Context, input ConfigurationInput) (*models.DrawConfiguration, error)
	GetActiveConfiguration(ctx context.Context, eventID int) (*models.DrawConfiguration, error)
}

type ConfigurationInput struct {
	EventID                  int              `json:"event_id"`
	TenantID                 int              `json:"tenant_id"`
	PrizeTiers               []PrizeTierInput `json:"prize_tiers"`
	MaxEntriesPerParticipant int              `json:"max_entries_per_participant"`
	RequirePhotoUpload       bool             `json:"require_photo_upload"`
	PreventDuplicateWinners  bool             `json:"prevent_duplicate_winners"`
	AllowAnonymousWinners    bool             `json:"allow_anonymous_winners"`
	Presentation             json.RawMessage  `json:"presentation,omitempty"`
	CreatedBy                int              `json:"-"`
}

type PrizeTierInput struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type configService struct {
	db         *sql.DB
	configRepo repositories.ConfigRepository
	resultRepo repositories.ResultRepository
}

func NewConfigService(db *sql.DB, configRepo repositories.ConfigRepository, resultRepo repositories.ResultRepository) ConfigService {
	return &configService{
		db:         db,
		configRepo: configRepo,
		resultRepo: resultRepo,
	}
}

// validateTiers checks the whole input before any row is written.
func validateTiers(inputs []PrizeTierInput) ([]models.PrizeTier, error) {
	if len(inputs) == 0 {
		return nil, ErrNoTiersSpecified
	}
	tiers := make([]models.PrizeTier, 0, len(inputs))
	seen := make(map[models.TierLabel]bool)
	for _, in := range inputs {
		label, err := models.ParseTierLabel(in.Label)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTierLabel, in.Label)
		}
		if in.Count <= 0 {
			return nil, fmt.Errorf("%w: tier %s has count %d", ErrInvalidTierCount, label, in.Count)
		}
		if seen[label] {
			return nil, fmt.Errorf("%w: tier %s specified twice", ErrInvalidTierLabel, label)
		}
		seen[label] = true
		tiers = append(tiers, models.PrizeTier{Label: label, Count: in.Count})
	}
	// Rank order is a property of the label, not of the payload order.
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].Label.Rank() < tiers[j].Label.Rank()
	})
	return tiers, nil
}

func (s *configService) UpsertConfiguration(ctx context.Context, input ConfigurationInput) (*models.DrawConfiguration, error) {
	tiers, err := validateTiers(input.PrizeTiers)
	if err != nil {
		return nil, err
	}
	if input.MaxEntriesPerParticipant < 1 {
		return nil, ErrInvalidEntryCap
	}

	cfg := &models.DrawConfiguration{
		EventID:                  input.EventID,
		TenantID:                 input.TenantID,
		Tiers:                    tiers,
		MaxEntriesPerParticipant: input.MaxEntriesPerParticipant,
		RequirePhotoUpload:       input.RequirePhotoUpload,
		PreventDuplicateWinners:  input.PreventDuplicateWinners,
		AllowAnonymousWinners:    input.AllowAnonymousWinners,
		Presentation:             input.Presentation,
		CreatedBy:                input.CreatedBy,
	}

	active, err := s.configRepo.FindActiveByEvent(ctx, input.EventID)
	if err != nil && !errors.Is(err, repositories.ErrConfigurationNotFound) {
		return nil, fmt.Errorf("failed to load active configuration: %w", err)
	}

	tx, err := s.beginTx(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	var exec repositories.SQLExecutor
	if tx != nil {
		exec = tx
	}

	switch {
	case active == nil:
		if err := s.configRepo.Create(ctx, exec, cfg); err != nil {
			// Параллельный upsert мог успеть активировать конфигурацию
			// между проверкой и вставкой; индекс это ловит.
			if errors.Is(err, repositories.ErrActiveConfigConflict) {
				return nil, ErrConfigurationConflict
			}
			return nil, err
		}

	default:
		referenced, err := s.resultRepo.CountByConfig(ctx, exec, active.ID)
		if err != nil {
			return nil, err
		}
		if referenced == 0 {
			// Not yet drawn against: update in place, same version.
			cfg.ID = active.ID
			cfg.IsActive = true
			cfg.CreatedAt = active.CreatedAt
			if err := s.configRepo.Update(ctx, exec, cfg); err != nil {
				return nil, err
			}
		} else {
			// Already referenced by a DrawResult: the old version becomes
			// historical and a new active version is created.
			if err := s.configRepo.DeactivateByEvent(ctx, exec, input.EventID); err != nil {
				return nil, err
			}
			if err := s.configRepo.Create(ctx, exec, cfg); err != nil {
				if errors.Is(err, repositories.ErrActiveConfigConflict) {
					return nil, ErrConfigurationConflict
				}
				return nil, err
			}
		}
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit configuration transaction: %w", err)
		}
		tx = nil
	}
	return cfg, nil
}

// beginTx is nil-tolerant so the service stays testable with in-memory
// repositories that have no real database behind them.
func (s *configService) beginTx(ctx context.Context) (*sql.Tx, error) {
	if s.db == nil {
		return nil, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin configuration transaction: %w", err)
	}
	return tx, nil
}

func (s *configService) GetActiveConfiguration(ctx context.Context, eventID int) (*models.DrawConfiguration, error) {
	cfg, err := s.configRepo.FindActiveByEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, repositories.ErrConfigurationNotFound) {
			return nil, ErrNoActiveConfiguration
		}
		return nil, err
	}
	return cfg, nil
}
