// Package generator builds randomized stimulus sequences for the games.
package generator

import (
	"math/rand"
	"sync"
	"time"
)

// Generator produces randomized stimuli. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSeed(time.Now().UnixNano())
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return &Generator{rnd: rand.New(rand.NewSource(seed))}
}

// Intn returns a uniform value in [0,n).
func (g *Generator) Intn(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Intn(n)
}

// Float64 returns a uniform value in [0,1).
func (g *Generator) Float64() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Float64()
}

// Perm returns a random permutation of [0,n).
func (g *Generator) Perm(n int) []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rnd.Perm(n)
}

// Shuffle shuffles n elements with Fisher-Yates.
func (g *Generator) Shuffle(n int, swap func(i, j int)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.rnd.Shuffle(n, swap)
}

// NBack generates a stream of turns symbols drawn from [0,alphabet). From
// position n onward each symbol copies position i-n with probability repeat,
// so matches only ever refer to already generated positions.
func (g *Generator) NBack(n, turns, alphabet int, repeat float64) []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	seq := make([]int, turns)
	for i := range seq {
		if i >= n && g.rnd.Float64() < repeat {
			seq[i] = seq[i-n]
			continue
		}
		seq[i] = g.rnd.Intn(alphabet)
	}
	return seq
}

// Digits returns length digits in 0..9.
func (g *Generator) Digits(length int) []int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]int, length)
	for i := range out {
		out[i] = g.rnd.Intn(10)
	}
	return out
}

// Deck returns two copies of each face in [0,pairs), shuffled.
func (g *Generator) Deck(pairs int) []int {
	deck := make([]int, 0, pairs*2)
	for face := 0; face < pairs; face++ {
		deck = append(deck, face, face)
	}
	g.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// SceneItem is one object placed in a snapshot scene.
type SceneItem struct {
	Icon  int
	Color int
	Cell  int
}

// Scene places count items with random icon and color on distinct cells of
// a grid with the given number of cells. Count is capped at cells.
func (g *Generator) Scene(count, icons, colors, cells int) []SceneItem {
	if count > cells {
		count = cells
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	positions := g.rnd.Perm(cells)
	items := make([]SceneItem, count)
	for i := range items {
		items[i] = SceneItem{
			Icon:  g.rnd.Intn(icons),
			Color: g.rnd.Intn(colors),
			Cell:  positions[i],
		}
	}
	return items
}

// StroopTrial draws a word color and an ink color. With probability conflict
// the ink differs from the word.
func (g *Generator) StroopTrial(colors int, conflict float64) (word, ink int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	word = g.rnd.Intn(colors)
	ink = word
	if colors > 1 && g.rnd.Float64() < conflict {
		ink = (word + 1 + g.rnd.Intn(colors-1)) % colors
	}
	return word, ink
}

// Between returns a uniform value in [1,max].
func (g *Generator) Between(max int) int {
	return g.Intn(max) + 1
}
