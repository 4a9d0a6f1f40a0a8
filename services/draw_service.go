package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/snapfest/luckydraw/models"
	"github.com/snapfest/luckydraw/repositories"
	"github.com/snapfest/luckydraw/rng"
	"github.com/snapfest/luckydraw/storage"
)

// DrawAnnouncer relays the two observable execution events to connected
// guests. Broadcasting itself is an external concern; the engine only emits.
type DrawAnnouncer interface {
	AnnounceDrawStarted(eventID int)
	AnnounceDrawCompleted(eventID int, result *models.DrawResult)
}

type DrawService interface {
	ExecuteDraw(ctx context.Context, eventID, configID, triggeredBy int) (*models.DrawResult, error)
}

type drawService struct {
	configRepo repositories.ConfigRepository
	entryRepo  repositories.EntryRepository
	resultRepo repositories.ResultRepository
	locker     repositories.DrawLocker
	announcer  DrawAnnouncer
	archiver   storage.ResultArchiver
	logger     *slog.Logger
}

func NewDrawService(
	configRepo repositories.ConfigRepository,
	entryRepo repositories.EntryRepository,
	resultRepo repositories.ResultRepository,
	locker repositories.DrawLocker,
	announcer DrawAnnouncer,
	archiver storage.ResultArchiver,
	logger *slog.Logger,
) DrawService {
	if logger == nil {
		logger = slog.Default()
	}
	return &drawService{
		configRepo: configRepo,
		entryRepo:  entryRepo,
		resultRepo: resultRepo,
		locker:     locker,
		announcer:  announcer,
		archiver:   archiver,
		logger:     logger,
	}
}

// participant is one deduplicated identity in the eligible pool. A
// participant can hold several entries, but within a single execution one
// identity can take at most one slot per tier; when selected, the winning
// entry is picked uniformly among their own entries.
type participant struct {
	key         string
	displayName string
	entryIDs    []int64
}

// ExecuteDraw runs one atomic draw against the given configuration.
//
// Повторный запуск разрешён: он создаёт независимый новый DrawResult и не
// трогает предыдущие. Взаимное исключение на (event, config) обеспечивает
// консультативная блокировка в транзакции исполнения.
func (s *drawService) ExecuteDraw(ctx context.Context, eventID, configID, triggeredBy int) (*models.DrawResult, error) {
	execution, err := s.locker.BeginExecution(ctx, eventID, configID)
	if err != nil {
		if errors.Is(err, repositories.ErrLockNotAcquired) {
			return nil, ErrDrawAlreadyInProgress
		}
		return nil, fmt.Errorf("failed to begin draw execution: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = execution.Rollback()
		}
	}()

	// Конфигурация проверяется уже под блокировкой: параллельный supersede
	// не может деактивировать её между проверкой и розыгрышем.
	cfg, err := s.configRepo.FindByID(ctx, execution.Executor(), configID)
	if err != nil {
		if errors.Is(err, repositories.ErrConfigurationNotFound) {
			return nil, ErrNoActiveConfiguration
		}
		return nil, fmt.Errorf("failed to load draw configuration: %w", err)
	}
	if cfg.EventID != eventID || !cfg.IsActive {
		// Superseded or foreign configuration versions are not executable.
		return nil, ErrNoActiveConfiguration
	}

	entries, err := s.entryRepo.ListByEvent(ctx, execution.Executor(), eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for draw: %w", err)
	}

	pool := buildEligiblePool(entries, cfg)
	if len(pool) == 0 {
		return nil, ErrNoEligibleEntries
	}

	if s.announcer != nil {
		s.announcer.AnnounceDrawStarted(eventID)
	}

	winners, err := selectWinners(cfg, pool)
	if err != nil {
		return nil, fmt.Errorf("winner selection failed: %w", err)
	}

	result := &models.DrawResult{
		ConfigID:   cfg.ID,
		EventID:    eventID,
		TenantID:   cfg.TenantID,
		ExecutedBy: triggeredBy,
		Winners:    winners,
		Stats:      buildStatistics(cfg, entries, winners),
	}

	if err := s.resultRepo.Create(ctx, execution.Executor(), result); err != nil {
		return nil, err
	}
	if err := execution.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit draw result: %w", err)
	}
	committed = true

	s.logger.Info("draw executed",
		slog.Int("event_id", eventID),
		slog.Int("config_id", configID),
		slog.Int64("result_id", result.ID),
		slog.Int("winners", len(result.Winners)),
	)

	if s.announcer != nil {
		s.announcer.AnnounceDrawCompleted(eventID, result)
	}
	if s.archiver != nil {
		// Best effort: the result is already durable in the database.
		if err := s.archiver.ArchiveResult(ctx, result); err != nil {
			s.logger.Error("failed to archive draw result",
				slog.Int64("result_id", result.ID), slog.Any("error", err))
		}
	}
	return result, nil
}

// buildEligiblePool filters entries per the configuration and deduplicates
// them to one pool slot per participant identity, preserving first-seen
// order. The entry ids are retained so a win can still point at the photo
// that triggered it.
func buildEligiblePool(entries []*models.Entry, cfg *models.DrawConfiguration) []*participant {
	pool := make([]*participant, 0, len(entries))
	byKey := make(map[string]*participant)
	for _, entry := range entries {
		if entry.IsAnonymous && !cfg.AllowAnonymousWinners {
			continue
		}
		if cfg.RequirePhotoUpload && entry.SourcePhotoID == nil {
			continue
		}
		key := entry.ParticipantKey()
		if key == "" {
			continue
		}
		p, ok := byKey[key]
		if !ok {
			p = &participant{key: key, displayName: entry.DisplayName}
			byKey[key] = p
			pool = append(pool, p)
		}
		p.entryIDs = append(p.entryIDs, entry.ID)
	}
	return pool
}

// selectWinners fills the tiers strictly in rank order. Partial fill is a
// normal outcome: when the pool runs short the tier takes what remains and
// every later tier gets zero winners.
func selectWinners(cfg *models.DrawConfiguration, pool []*participant) ([]models.Winner, error) {
	tiers := make([]models.PrizeTier, len(cfg.Tiers))
	copy(tiers, cfg.Tiers)
	sort.Slice(tiers, func(i, j int) bool {
		return tiers[i].Label.Rank() < tiers[j].Label.Rank()
	})

	remaining := make([]*participant, len(pool))
	copy(remaining, pool)

	winners := make([]models.Winner, 0, cfg.TotalCapacity())
	for _, tier := range tiers {
		if len(remaining) == 0 {
			break
		}

		selected, err := rng.SampleWithoutReplacement(len(remaining), tier.Count)
		if err != nil {
			return nil, err
		}

		taken := make(map[int]bool, len(selected))
		for _, idx := range selected {
			p := remaining[idx]
			entryID, err := pickWinningEntry(p)
			if err != nil {
				return nil, err
			}
			winners = append(winners, models.Winner{
				Tier:           tier.Label,
				EntryID:        entryID,
				ParticipantKey: p.key,
				DisplayName:    p.displayName,
				Position:       len(winners),
			})
			taken[idx] = true
		}

		if cfg.PreventDuplicateWinners {
			next := remaining[:0]
			for i, p := range remaining {
				if !taken[i] {
					next = append(next, p)
				}
			}
			remaining = next
		}
	}
	return winners, nil
}

// pickWinningEntry chooses which of the participant's own entries is
// reported as "the winning entry", uniformly at random.
func pickWinningEntry(p *participant) (int64, error) {
	if len(p.entryIDs) == 1 {
		return p.entryIDs[0], nil
	}
	idx, err := rng.Intn(len(p.entryIDs))
	if err != nil {
		return 0, err
	}
	return p.entryIDs[idx], nil
}

func buildStatistics(cfg *models.DrawConfiguration, entries []*models.Entry, winners []models.Winner) models.DrawStatistics {
	unique := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if key := entry.ParticipantKey(); key != "" {
			unique[key] = true
		}
	}

	byTier := make(map[models.TierLabel]int, len(cfg.Tiers))
	for _, tier := range cfg.Tiers {
		byTier[tier.Label] = 0
	}
	for _, w := range winners {
		byTier[w.Tier]++
	}

	rate := 0.0
	if len(entries) > 0 {
		rate = float64(len(unique)) / float64(len(entries))
	}
	return models.DrawStatistics{
		TotalEntries:       len(entries),
		UniqueParticipants: len(unique),
		WinnersByTier:      byTier,
		ParticipationRate:  rate,
	}
}
