package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNBackRepeatsLookBackward(t *testing.T) {
	g := NewWithSeed(7)
	seq := g.NBack(2, 200, 9, 1)
	for i := 2; i < len(seq); i++ {
		if seq[i] != seq[i-2] {
			t.Fatalf("expected forced repeat at %d, got %d vs %d", i, seq[i], seq[i-2])
		}
	}
}

func TestNBackRepeatRate(t *testing.T) {
	g := NewWithSeed(42)
	seq := g.NBack(1, 5000, 9, 0.3)
	matches := 0
	for i := 1; i < len(seq); i++ {
		if seq[i] == seq[i-1] {
			matches++
		}
	}
	// 0.3 forced plus roughly 0.7/9 by chance.
	rate := float64(matches) / float64(len(seq)-1)
	assert.InDelta(t, 0.3+0.7/9, rate, 0.04)
}

func TestDeckHasPairs(t *testing.T) {
	deck := NewWithSeed(1).Deck(6)
	counts := map[int]int{}
	for _, f := range deck {
		counts[f]++
	}
	assert.Len(t, deck, 12)
	for face := 0; face < 6; face++ {
		assert.Equal(t, 2, counts[face])
	}
}

func TestSceneDistinctCells(t *testing.T) {
	items := NewWithSeed(3).Scene(12, 10, 5, 16)
	seen := map[int]bool{}
	for _, it := range items {
		assert.False(t, seen[it.Cell], "cell %d reused", it.Cell)
		seen[it.Cell] = true
	}
	assert.Len(t, NewWithSeed(3).Scene(20, 10, 5, 16), 16)
}

func TestStroopTrialConflict(t *testing.T) {
	g := NewWithSeed(5)
	for i := 0; i < 100; i++ {
		word, ink := g.StroopTrial(4, 1)
		assert.NotEqual(t, word, ink)
		word, ink = g.StroopTrial(4, 0)
		assert.Equal(t, word, ink)
	}
}
