package services

import (
	"context"
	"testing"

	"github.com/snapfest/luckydraw/models"
)

func TestGetEventStats_Aggregates(t *testing.T) {
	entryRepo := &fakeEntryRepo{}
	resultRepo := &fakeResultRepo{}
	svc := NewStatsService(entryRepo, resultRepo)

	fpA, fpB := "device-a", "device-b"
	for _, fp := range []*string{&fpA, &fpA, &fpB} {
		if err := entryRepo.Create(context.Background(), &models.Entry{
			EventID:                testEventID,
			ParticipantFingerprint: fp,
		}); err != nil {
			t.Fatalf("seed entry: %v", err)
		}
	}

	stats, err := svc.GetEventStats(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("GetEventStats: %v", err)
	}
	if stats.TotalEntries != 3 || stats.UniqueParticipants != 2 {
		t.Errorf("expected 3 entries / 2 participants, got %d / %d",
			stats.TotalEntries, stats.UniqueParticipants)
	}
	if got, want := stats.ParticipationRate, 2.0/3.0; got != want {
		t.Errorf("expected participation rate %f, got %f", want, got)
	}
	if stats.HasResult {
		t.Errorf("no draw has run yet")
	}
}

func TestGetEventStats_IncludesLatestResult(t *testing.T) {
	entryRepo := &fakeEntryRepo{}
	resultRepo := &fakeResultRepo{}
	svc := NewStatsService(entryRepo, resultRepo)

	if err := resultRepo.Create(context.Background(), nil, &models.DrawResult{
		EventID: testEventID,
		Stats: models.DrawStatistics{
			WinnersByTier: map[models.TierLabel]int{models.TierGrand: 1},
		},
	}); err != nil {
		t.Fatalf("seed result: %v", err)
	}

	stats, err := svc.GetEventStats(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("GetEventStats: %v", err)
	}
	if !stats.HasResult {
		t.Fatalf("expected HasResult")
	}
	if stats.WinnersByTier[models.TierGrand] != 1 {
		t.Errorf("winners by tier not carried over: %+v", stats.WinnersByTier)
	}
}

func TestGetEventStats_EmptyEvent(t *testing.T) {
	svc := NewStatsService(&fakeEntryRepo{}, &fakeResultRepo{})

	stats, err := svc.GetEventStats(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("GetEventStats: %v", err)
	}
	if stats.TotalEntries != 0 || stats.ParticipationRate != 0 {
		t.Errorf("empty event must report zeroes, got %+v", stats)
	}
}

func TestGetEventStats_Cache(t *testing.T) {
	entryRepo := &fakeEntryRepo{}
	svc := NewStatsService(entryRepo, &fakeResultRepo{})

	first, err := svc.GetEventStats(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("GetEventStats: %v", err)
	}

	// Новая запись внутри TTL окна не видна - отдаётся кэш.
	fp := "device-late"
	if err := entryRepo.Create(context.Background(), &models.Entry{
		EventID:                testEventID,
		ParticipantFingerprint: &fp,
	}); err != nil {
		t.Fatalf("seed entry: %v", err)
	}

	second, err := svc.GetEventStats(context.Background(), testEventID)
	if err != nil {
		t.Fatalf("GetEventStats: %v", err)
	}
	if second.TotalEntries != first.TotalEntries {
		t.Errorf("expected cached stats within TTL, got %d entries", second.TotalEntries)
	}
}
