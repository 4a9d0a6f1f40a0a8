package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/snapfest/luckydraw/models"
	"github.com/snapfest/luckydraw/repositories"
	"golang.org/x/sync/errgroup"
)

// statsCacheTTL keeps the live dashboard cheap without going stale enough to
// matter during an event.
const statsCacheTTL = 5 * time.Second

// StatsService - чистая read-side агрегация поверх реестра участий и
// журнала победителей; без мутаций и побочных эффектов.
type StatsService interface {
	GetEventStats(ctx context.Context, eventID int) (*models.EventStats, error)
}

type statsService struct {
	entryRepo  repositories.EntryRepository
	resultRepo repositories.ResultRepository

	mu    sync.RWMutex
	cache map[int]cachedStats
}

type cachedStats struct {
	stats     *models.EventStats
	fetchedAt time.Time
}

func NewStatsService(entryRepo repositories.EntryRepository, resultRepo repositories.ResultRepository) StatsService {
	return &statsService{
		entryRepo:  entryRepo,
		resultRepo: resultRepo,
		cache:      make(map[int]cachedStats),
	}
}

func (s *statsService) GetEventStats(ctx context.Context, eventID int) (*models.EventStats, error) {
	s.mu.RLock()
	cached, ok := s.cache[eventID]
	s.mu.RUnlock()
	if ok && time.Since(cached.fetchedAt) < statsCacheTTL {
		return cached.stats, nil
	}

	stats, err := s.computeStats(ctx, eventID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[eventID] = cachedStats{stats: stats, fetchedAt: time.Now()}
	s.mu.Unlock()
	return stats, nil
}

// computeStats runs the independent aggregate queries concurrently; they
// touch disjoint tables and none of them writes.
func (s *statsService) computeStats(ctx context.Context, eventID int) (*models.EventStats, error) {
	stats := &models.EventStats{EventID: eventID}

	var latest *models.DrawResult
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.entryRepo.CountByEvent(gCtx, eventID)
		if err != nil {
			return err
		}
		stats.TotalEntries = total
		return nil
	})
	g.Go(func() error {
		unique, err := s.entryRepo.CountUniqueParticipants(gCtx, eventID)
		if err != nil {
			return err
		}
		stats.UniqueParticipants = unique
		return nil
	})
	g.Go(func() error {
		result, err := s.resultRepo.FindLatestByEvent(gCtx, eventID)
		if err != nil {
			if errors.Is(err, repositories.ErrResultNotFound) {
				return nil
			}
			return err
		}
		latest = result
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if latest != nil {
		stats.HasResult = true
		stats.WinnersByTier = latest.Stats.WinnersByTier
	}
	if stats.TotalEntries > 0 {
		stats.ParticipationRate = float64(stats.UniqueParticipants) / float64(stats.TotalEntries)
	}
	return stats, nil
}
