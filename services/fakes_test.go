package services

import (
	"context"
	"sync"
	"time"

	"github.com/snapfest/luckydraw/models"
	"github.com/snapfest/luckydraw/repositories"
)

// In-memory doubles for the repository interfaces. They keep the unit tests
// free of a running Postgres while preserving the repositories' contracts
// (sentinel errors, append-only results).

type fakeEntryRepo struct {
	mu      sync.Mutex
	entries []*models.Entry
	nextID  int64
}

func (f *fakeEntryRepo) Create(_ context.Context, entry *models.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	entry.ID = f.nextID
	entry.CreatedAt = time.Now()
	stored := *entry
	f.entries = append(f.entries, &stored)
	return nil
}

func (f *fakeEntryRepo) FindByID(_ context.Context, id int64) (*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, repositories.ErrEntryNotFound
}

func (f *fakeEntryRepo) ListByEvent(_ context.Context, _ repositories.SQLExecutor, eventID int) ([]*models.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Entry, 0)
	for _, e := range f.entries {
		if e.EventID == eventID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEntryRepo) CountByEvent(ctx context.Context, eventID int) (int, error) {
	entries, _ := f.ListByEvent(ctx, nil, eventID)
	return len(entries), nil
}

func (f *fakeEntryRepo) CountByEventAndParticipant(ctx context.Context, eventID int, participantKey string) (int, error) {
	entries, _ := f.ListByEvent(ctx, nil, eventID)
	count := 0
	for _, e := range entries {
		if e.ParticipantKey() == participantKey {
			count++
		}
	}
	return count, nil
}

func (f *fakeEntryRepo) CountUniqueParticipants(ctx context.Context, eventID int) (int, error) {
	entries, _ := f.ListByEvent(ctx, nil, eventID)
	unique := make(map[string]bool)
	for _, e := range entries {
		unique[e.ParticipantKey()] = true
	}
	return len(unique), nil
}

type fakeConfigRepo struct {
	mu      sync.Mutex
	configs []*models.DrawConfiguration
	nextID  int
}

func (f *fakeConfigRepo) Create(_ context.Context, _ repositories.SQLExecutor, cfg *models.DrawConfiguration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.configs {
		if c.EventID == cfg.EventID && c.IsActive {
			return repositories.ErrActiveConfigConflict
		}
	}
	f.nextID++
	cfg.ID = f.nextID
	cfg.IsActive = true
	cfg.CreatedAt = time.Now()
	cfg.UpdatedAt = cfg.CreatedAt
	stored := *cfg
	f.configs = append(f.configs, &stored)
	return nil
}

func (f *fakeConfigRepo) Update(_ context.Context, _ repositories.SQLExecutor, cfg *models.DrawConfiguration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, c := range f.configs {
		if c.ID == cfg.ID {
			cfg.UpdatedAt = time.Now()
			stored := *cfg
			f.configs[i] = &stored
			return nil
		}
	}
	return repositories.ErrConfigurationNotFound
}

func (f *fakeConfigRepo) DeactivateByEvent(_ context.Context, _ repositories.SQLExecutor, eventID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.configs {
		if c.EventID == eventID {
			c.IsActive = false
		}
	}
	return nil
}

func (f *fakeConfigRepo) FindActiveByEvent(_ context.Context, eventID int) (*models.DrawConfiguration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.configs {
		if c.EventID == eventID && c.IsActive {
			return c, nil
		}
	}
	return nil, repositories.ErrConfigurationNotFound
}

func (f *fakeConfigRepo) FindByID(_ context.Context, _ repositories.SQLExecutor, id int) (*models.DrawConfiguration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.configs {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repositories.ErrConfigurationNotFound
}

type fakeResultRepo struct {
	mu           sync.Mutex
	results      []*models.DrawResult
	revocations  []*models.WinnerRevocation
	nextResultID int64
	nextWinnerID int64
	nextRevID    int64
}

func (f *fakeResultRepo) Create(_ context.Context, _ repositories.SQLExecutor, result *models.DrawResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextResultID++
	result.ID = f.nextResultID
	result.ExecutedAt = time.Now()
	for i := range result.Winners {
		f.nextWinnerID++
		result.Winners[i].ID = f.nextWinnerID
		result.Winners[i].ResultID = result.ID
	}

	// Deep copy so later mutations by the caller cannot leak into the
	// "persisted" row.
	stored := *result
	stored.Winners = make([]models.Winner, len(result.Winners))
	copy(stored.Winners, result.Winners)
	f.results = append(f.results, &stored)
	return nil
}

func (f *fakeResultRepo) FindByID(_ context.Context, id int64) (*models.DrawResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.results {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, repositories.ErrResultNotFound
}

func (f *fakeResultRepo) FindLatestByEvent(_ context.Context, eventID int) (*models.DrawResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.DrawResult
	for _, r := range f.results {
		if r.EventID == eventID {
			latest = r
		}
	}
	if latest == nil {
		return nil, repositories.ErrResultNotFound
	}
	return latest, nil
}

func (f *fakeResultRepo) ListByEvent(_ context.Context, eventID int) ([]*models.DrawResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.DrawResult, 0)
	for i := len(f.results) - 1; i >= 0; i-- {
		if f.results[i].EventID == eventID {
			out = append(out, f.results[i])
		}
	}
	return out, nil
}

func (f *fakeResultRepo) CountByConfig(_ context.Context, _ repositories.SQLExecutor, configID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, r := range f.results {
		if r.ConfigID == configID {
			count++
		}
	}
	return count, nil
}

func (f *fakeResultRepo) FindLatestWinnerByParticipant(_ context.Context, eventID int, participantKey string) (*models.Winner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	revoked := make(map[int64]bool)
	for _, rev := range f.revocations {
		revoked[rev.WinnerID] = true
	}
	for i := len(f.results) - 1; i >= 0; i-- {
		r := f.results[i]
		if r.EventID != eventID {
			continue
		}
		for j := range r.Winners {
			w := r.Winners[j]
			if w.ParticipantKey == participantKey && !revoked[w.ID] {
				return &w, nil
			}
		}
	}
	return nil, repositories.ErrWinnerNotFound
}

func (f *fakeResultRepo) CreateRevocation(_ context.Context, rev *models.WinnerRevocation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextRevID++
	rev.ID = f.nextRevID
	rev.CreatedAt = time.Now()
	stored := *rev
	f.revocations = append(f.revocations, &stored)
	return nil
}

// fakeDrawLocker mirrors the advisory-lock contract: at most one execution
// per (event, config) key at a time, released on commit or rollback.
type fakeDrawLocker struct {
	mu   sync.Mutex
	held map[[2]int]bool
}

func newFakeDrawLocker() *fakeDrawLocker {
	return &fakeDrawLocker{held: make(map[[2]int]bool)}
}

func (l *fakeDrawLocker) BeginExecution(_ context.Context, eventID, configID int) (repositories.DrawExecution, error) {
	key := [2]int{eventID, configID}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, repositories.ErrLockNotAcquired
	}
	l.held[key] = true
	return &fakeDrawExecution{locker: l, key: key}, nil
}

type fakeDrawExecution struct {
	locker *fakeDrawLocker
	key    [2]int
	done   bool
}

func (e *fakeDrawExecution) Executor() repositories.SQLExecutor { return nil }

func (e *fakeDrawExecution) release() {
	e.locker.mu.Lock()
	defer e.locker.mu.Unlock()
	if !e.done {
		delete(e.locker.held, e.key)
		e.done = true
	}
}

func (e *fakeDrawExecution) Commit() error   { e.release(); return nil }
func (e *fakeDrawExecution) Rollback() error { e.release(); return nil }

// fakeAnnouncer records announcements; an optional gate blocks the started
// announcement until released, to hold an execution open mid-flight.
type fakeAnnouncer struct {
	mu        sync.Mutex
	started   []int
	completed []int

	startedGate    chan struct{}
	startedReached chan struct{}
}

func (a *fakeAnnouncer) AnnounceDrawStarted(eventID int) {
	if a.startedReached != nil {
		close(a.startedReached)
	}
	if a.startedGate != nil {
		<-a.startedGate
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.started = append(a.started, eventID)
}

func (a *fakeAnnouncer) AnnounceDrawCompleted(eventID int, _ *models.DrawResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.completed = append(a.completed, eventID)
}
