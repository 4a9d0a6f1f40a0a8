package rng

import (
	"errors"
	"testing"
)

func TestIntn_Bounds(t *testing.T) {
	for i := 0; i < 200; i++ {
		v, err := Intn(7)
		if err != nil {
			t.Fatalf("Intn: %v", err)
		}
		if v < 0 || v >= 7 {
			t.Fatalf("value %d out of [0,7)", v)
		}
	}

	if _, err := Intn(0); err == nil {
		t.Errorf("Intn(0) must fail")
	}
	if _, err := Intn(-3); err == nil {
		t.Errorf("Intn(-3) must fail")
	}
}

func TestSampleWithoutReplacement_Distinct(t *testing.T) {
	selected, err := SampleWithoutReplacement(10, 6)
	if err != nil {
		t.Fatalf("SampleWithoutReplacement: %v", err)
	}
	if len(selected) != 6 {
		t.Fatalf("expected 6 picks, got %d", len(selected))
	}
	seen := make(map[int]bool)
	for _, idx := range selected {
		if idx < 0 || idx >= 10 {
			t.Errorf("index %d out of pool", idx)
		}
		if seen[idx] {
			t.Errorf("index %d selected twice", idx)
		}
		seen[idx] = true
	}
}

func TestSampleWithoutReplacement_ClampsToPool(t *testing.T) {
	selected, err := SampleWithoutReplacement(3, 10)
	if err != nil {
		t.Fatalf("SampleWithoutReplacement: %v", err)
	}
	if len(selected) != 3 {
		t.Fatalf("expected the whole pool, got %d picks", len(selected))
	}
	seen := make(map[int]bool)
	for _, idx := range selected {
		seen[idx] = true
	}
	for i := 0; i < 3; i++ {
		if !seen[i] {
			t.Errorf("index %d missing from exhaustive sample", i)
		}
	}
}

func TestSampleWithoutReplacement_EmptyPool(t *testing.T) {
	if _, err := SampleWithoutReplacement(0, 1); !errors.Is(err, ErrEmptyPool) {
		t.Errorf("expected ErrEmptyPool, got %v", err)
	}
	if _, err := SampleWithoutReplacement(5, 0); err == nil {
		t.Errorf("zero count must fail")
	}
}
