package models

import "fmt"

// TierLabel представляет ранг приза, соответствующий ENUM в БД.
// Обработка тиров всегда идёт по Rank(), а не по порядку в запросе.
type TierLabel string

const (
	TierGrand       TierLabel = "grand"
	TierFirst       TierLabel = "first"
	TierSecond      TierLabel = "second"
	TierThird       TierLabel = "third"
	TierConsolation TierLabel = "consolation"
)

var tierRanks = map[TierLabel]int{
	TierGrand:       0,
	TierFirst:       1,
	TierSecond:      2,
	TierThird:       3,
	TierConsolation: 4,
}

// ParseTierLabel validates a raw label against the fixed rank set.
func ParseTierLabel(raw string) (TierLabel, error) {
	label := TierLabel(raw)
	if _, ok := tierRanks[label]; !ok {
		return "", fmt.Errorf("unknown tier label: %q", raw)
	}
	return label, nil
}

// Rank returns the processing order of the tier (grand=0, consolation=4).
func (t TierLabel) Rank() int {
	rank, ok := tierRanks[t]
	if !ok {
		return len(tierRanks)
	}
	return rank
}

func (t TierLabel) Valid() bool {
	_, ok := tierRanks[t]
	return ok
}

// PrizeTier is one ranked prize bucket with a fixed winner capacity.
type PrizeTier struct {
	Label TierLabel `json:"label" db:"tier_label"`
	Count int       `json:"count" db:"winner_count"`
}
