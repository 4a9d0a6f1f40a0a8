package models

import "testing"

func TestParseTierLabel(t *testing.T) {
	for _, raw := range []string{"grand", "first", "second", "third", "consolation"} {
		label, err := ParseTierLabel(raw)
		if err != nil {
			t.Errorf("ParseTierLabel(%q): %v", raw, err)
		}
		if !label.Valid() {
			t.Errorf("%q must be valid", raw)
		}
	}

	for _, raw := range []string{"", "jackpot", "Grand", "GRAND"} {
		if _, err := ParseTierLabel(raw); err == nil {
			t.Errorf("ParseTierLabel(%q) must fail", raw)
		}
	}
}

func TestTierRankOrder(t *testing.T) {
	order := []TierLabel{TierGrand, TierFirst, TierSecond, TierThird, TierConsolation}
	for i, label := range order {
		if label.Rank() != i {
			t.Errorf("%s: expected rank %d, got %d", label, i, label.Rank())
		}
	}
	if TierLabel("bogus").Rank() <= TierConsolation.Rank() {
		t.Errorf("unknown labels must sort after every known tier")
	}
}

func TestEntryParticipantKey(t *testing.T) {
	userID := 42
	fp := "device-a"

	withUser := &Entry{ParticipantUserID: &userID, ParticipantFingerprint: &fp}
	if got := withUser.ParticipantKey(); got != "user:42" {
		t.Errorf("user id must win over fingerprint, got %q", got)
	}

	withFP := &Entry{ParticipantFingerprint: &fp}
	if got := withFP.ParticipantKey(); got != "device-a" {
		t.Errorf("expected fingerprint key, got %q", got)
	}

	if got := (&Entry{}).ParticipantKey(); got != "" {
		t.Errorf("identity-less entry must have empty key, got %q", got)
	}
}

func TestEntryDrawNumber(t *testing.T) {
	cases := []struct {
		id   int64
		want string
	}{
		{1, "0001"},
		{255, "00FF"},
		{65535, "FFFF"},
		{65536, "0000"},   // 0x10000, last four hex digits
		{1048575, "FFFF"}, // 0xFFFFF
	}
	for _, tc := range cases {
		e := &Entry{ID: tc.id}
		if got := e.DrawNumber(); got != tc.want {
			t.Errorf("DrawNumber(%d): expected %q, got %q", tc.id, tc.want, got)
		}
	}
}

func TestConfigurationTotalCapacity(t *testing.T) {
	cfg := &DrawConfiguration{Tiers: []PrizeTier{
		{Label: TierGrand, Count: 1},
		{Label: TierFirst, Count: 3},
	}}
	if got := cfg.TotalCapacity(); got != 4 {
		t.Errorf("expected capacity 4, got %d", got)
	}
}
