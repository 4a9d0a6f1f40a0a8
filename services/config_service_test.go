package services

import (
	"context"
	"errors"
	"testing"

	"github.com/snapfest/luckydraw/models"
	"github.com/snapfest/luckydraw/repositories"
)

func validConfigInput() ConfigurationInput {
	return ConfigurationInput{
		EventID:  testEventID,
		TenantID: testTenantID,
		PrizeTiers: []PrizeTierInput{
			{Label: "grand", Count: 1},
			{Label: "first", Count: 2},
		},
		MaxEntriesPerParticipant: 3,
		CreatedBy:                testUserID,
	}
}

func TestUpsertConfiguration_Validation(t *testing.T) {
	svc := NewConfigService(nil, &fakeConfigRepo{}, &fakeResultRepo{})

	cases := []struct {
		name    string
		mutate  func(*ConfigurationInput)
		wantErr error
	}{
		{
			name:    "no tiers",
			mutate:  func(in *ConfigurationInput) { in.PrizeTiers = nil },
			wantErr: ErrNoTiersSpecified,
		},
		{
			name: "unknown label",
			mutate: func(in *ConfigurationInput) {
				in.PrizeTiers = []PrizeTierInput{{Label: "jackpot", Count: 1}}
			},
			wantErr: ErrInvalidTierLabel,
		},
		{
			name: "zero count",
			mutate: func(in *ConfigurationInput) {
				in.PrizeTiers = []PrizeTierInput{{Label: "grand", Count: 0}}
			},
			wantErr: ErrInvalidTierCount,
		},
		{
			name: "duplicate tier",
			mutate: func(in *ConfigurationInput) {
				in.PrizeTiers = []PrizeTierInput{
					{Label: "grand", Count: 1},
					{Label: "grand", Count: 2},
				}
			},
			wantErr: ErrInvalidTierLabel,
		},
		{
			name:    "entry cap below one",
			mutate:  func(in *ConfigurationInput) { in.MaxEntriesPerParticipant = 0 },
			wantErr: ErrInvalidEntryCap,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validConfigInput()
			tc.mutate(&input)
			_, err := svc.UpsertConfiguration(context.Background(), input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestUpsertConfiguration_CreatesFirstVersion(t *testing.T) {
	configRepo := &fakeConfigRepo{}
	svc := NewConfigService(nil, configRepo, &fakeResultRepo{})

	cfg, err := svc.UpsertConfiguration(context.Background(), validConfigInput())
	if err != nil {
		t.Fatalf("UpsertConfiguration: %v", err)
	}
	if cfg.ID == 0 || !cfg.IsActive {
		t.Errorf("expected a new active configuration, got id=%d active=%v", cfg.ID, cfg.IsActive)
	}
	// Tiers come back rank-ordered regardless of payload order.
	if cfg.Tiers[0].Label != models.TierGrand || cfg.Tiers[1].Label != models.TierFirst {
		t.Errorf("tiers not rank-ordered: %+v", cfg.Tiers)
	}
}

func TestUpsertConfiguration_UpdatesInPlaceBeforeFirstDraw(t *testing.T) {
	configRepo := &fakeConfigRepo{}
	svc := NewConfigService(nil, configRepo, &fakeResultRepo{})

	first, err := svc.UpsertConfiguration(context.Background(), validConfigInput())
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	input := validConfigInput()
	input.MaxEntriesPerParticipant = 10
	second, err := svc.UpsertConfiguration(context.Background(), input)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected in-place update to keep id %d, got %d", first.ID, second.ID)
	}
	if second.MaxEntriesPerParticipant != 10 {
		t.Errorf("update not applied: %+v", second)
	}
}

func TestUpsertConfiguration_NewVersionAfterDraw(t *testing.T) {
	configRepo := &fakeConfigRepo{}
	resultRepo := &fakeResultRepo{}
	svc := NewConfigService(nil, configRepo, resultRepo)

	first, err := svc.UpsertConfiguration(context.Background(), validConfigInput())
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// A result referencing the configuration freezes it for audit.
	if err := resultRepo.Create(context.Background(), nil, &models.DrawResult{
		EventID:  testEventID,
		ConfigID: first.ID,
	}); err != nil {
		t.Fatalf("seed result: %v", err)
	}

	second, err := svc.UpsertConfiguration(context.Background(), validConfigInput())
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("expected a new version, got the same id %d", first.ID)
	}

	old, err := configRepo.FindByID(context.Background(), nil, first.ID)
	if err != nil {
		t.Fatalf("old version must stay in history: %v", err)
	}
	if old.IsActive {
		t.Errorf("superseded version must be inactive")
	}

	active, err := svc.GetActiveConfiguration(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("GetActiveConfiguration: %v", err)
	}
	if active.ID != second.ID {
		t.Errorf("active configuration must be the new version, got %d", active.ID)
	}
}

// racingConfigRepo mimics the window between the active-config check and the
// insert: FindActiveByEvent sees nothing, then the partial unique index
// rejects the insert because a concurrent upsert won the race.
type racingConfigRepo struct {
	fakeConfigRepo
}

func (r *racingConfigRepo) FindActiveByEvent(context.Context, int) (*models.DrawConfiguration, error) {
	return nil, repositories.ErrConfigurationNotFound
}

func (r *racingConfigRepo) Create(context.Context, repositories.SQLExecutor, *models.DrawConfiguration) error {
	return repositories.ErrActiveConfigConflict
}

func TestUpsertConfiguration_ConcurrentUpsertConflict(t *testing.T) {
	svc := NewConfigService(nil, &racingConfigRepo{}, &fakeResultRepo{})

	_, err := svc.UpsertConfiguration(context.Background(), validConfigInput())
	if !errors.Is(err, ErrConfigurationConflict) {
		t.Fatalf("expected ErrConfigurationConflict, got %v", err)
	}
}

func TestGetActiveConfiguration_NotFound(t *testing.T) {
	svc := NewConfigService(nil, &fakeConfigRepo{}, &fakeResultRepo{})
	_, err := svc.GetActiveConfiguration(context.Background(), testEventID)
	if !errors.Is(err, ErrNoActiveConfiguration) {
		t.Fatalf("expected ErrNoActiveConfiguration, got %v", err)
	}
}
