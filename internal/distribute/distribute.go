// Package distribute partitions the chord across the connected peer set.
// Everything here is pure: no state, randomness comes in as an explicit
// source, so every strategy is reproducible under a seeded generator.
package distribute

import (
	"math"
	"math/rand"

	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
)

// Distribution strategies
type Strategy string

const (
	StrategyRoundRobin         Strategy = "round-robin"
	StrategyRandom             Strategy = "random"
	StrategyBalanced           Strategy = "balanced"
	StrategyRandomizedBalanced Strategy = "randomized-balanced"
	StrategyWeighted           Strategy = "weighted"
)

var ValidStrategies = []Strategy{
	StrategyRoundRobin, StrategyRandom, StrategyBalanced,
	StrategyRandomizedBalanced, StrategyWeighted,
}

// ParseStrategy clamps unknown names to round-robin; a bad config value
// must not halt a performance.
func ParseStrategy(name string) Strategy {
	for _, s := range ValidStrategies {
		if string(s) == name {
			return s
		}
	}
	return StrategyRoundRobin
}

// Assigned is one peer's slot: the note it plays and that note's position
// in the chord.
type Assigned struct {
	Note  model.Note
	Index int
}

// Distribute maps each peer id to a chord note. Empty notes or peers yield
// an empty map; notes outnumbering peers is fine (some notes go unplayed).
// Duplicate frequencies are treated as distinct slots.
func Distribute(notes []model.Note, peerIDs []string, strategy Strategy, rng *rand.Rand) map[string]Assigned {
	out := make(map[string]Assigned)
	if len(notes) == 0 || len(peerIDs) == 0 {
		return out
	}

	switch strategy {
	case StrategyRandom:
		for _, id := range peerIDs {
			i := rng.Intn(len(notes))
			out[id] = Assigned{Note: notes[i], Index: i}
		}
	case StrategyBalanced:
		fillBlocks(out, notes, peerIDs, balancedCounts(len(peerIDs), len(notes)))
	case StrategyRandomizedBalanced:
		shuffled := append([]string(nil), peerIDs...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		fillBlocks(out, notes, shuffled, balancedCounts(len(shuffled), len(notes)))
	case StrategyWeighted:
		fillBlocks(out, notes, peerIDs, weightedCounts(notes, len(peerIDs)))
	default: // round-robin
		for i, id := range peerIDs {
			n := i % len(notes)
			out[id] = Assigned{Note: notes[n], Index: n}
		}
	}
	return out
}

// balancedCounts sizes each note's peer group to floor(M/N) or ceil(M/N),
// extras going to the lowest note indices, summing to M.
func balancedCounts(peers, notes int) []int {
	counts := make([]int, notes)
	base := peers / notes
	extra := peers % notes
	for i := range counts {
		counts[i] = base
		if i < extra {
			counts[i]++
		}
	}
	return counts
}

// weightedCounts is balancedCounts with the remainder biased toward the
// chord's root and fifth instead of the lowest indices.
func weightedCounts(notes []model.Note, peers int) []int {
	counts := make([]int, len(notes))
	base := peers / len(notes)
	extra := peers % len(notes)
	for i := range counts {
		counts[i] = base
	}
	for _, i := range preferredOrder(notes) {
		if extra == 0 {
			break
		}
		counts[i]++
		extra--
	}
	return counts
}

// preferredOrder lists note indices with the root first, the fifth second
// (the note nearest 3:2 above the root, within a quartertone), then the
// rest in chord order.
func preferredOrder(notes []model.Note) []int {
	root := 0
	for i, n := range notes {
		if n.Frequency < notes[root].Frequency {
			root = i
		}
	}

	fifth := -1
	target := notes[root].Frequency * 1.5
	best := math.Inf(1)
	for i, n := range notes {
		if i == root {
			continue
		}
		// distance in cents, so the tolerance is pitch-relative
		cents := math.Abs(1200 * math.Log2(n.Frequency/target))
		if cents < best && cents <= 50 {
			best = cents
			fifth = i
		}
	}

	order := []int{root}
	if fifth >= 0 {
		order = append(order, fifth)
	}
	for i := range notes {
		if i != root && i != fifth {
			order = append(order, i)
		}
	}
	return order
}

// fillBlocks hands contiguous runs of peers to each note per its count.
func fillBlocks(out map[string]Assigned, notes []model.Note, peerIDs []string, counts []int) {
	p := 0
	for i, n := range notes {
		for k := 0; k < counts[i] && p < len(peerIDs); k++ {
			out[peerIDs[p]] = Assigned{Note: n, Index: i}
			p++
		}
	}
}
