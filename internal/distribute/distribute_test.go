package distribute

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/capogreco/string.assembly.fm-sub005/internal/model"
)

func testNotes(frequencies ...float64) []model.Note {
	notes := make([]model.Note, len(frequencies))
	for i, f := range frequencies {
		notes[i] = model.NewNote(f)
	}
	return notes
}

func testPeers(n int) []string {
	peers := make([]string, n)
	for i := range peers {
		peers[i] = fmt.Sprintf("peer-%d", i)
	}
	return peers
}

// countsByIndex histograms how many peers landed on each note slot.
func countsByIndex(assignment map[string]Assigned, notes int) []int {
	counts := make([]int, notes)
	for _, a := range assignment {
		counts[a.Index]++
	}
	return counts
}

func TestDistributeEmptyInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	notes := testNotes(220, 330)

	for _, s := range ValidStrategies {
		if got := Distribute(nil, testPeers(3), s, rng); len(got) != 0 {
			t.Errorf("%s: empty notes should yield empty assignment, got %d entries", s, len(got))
		}
		if got := Distribute(notes, nil, s, rng); len(got) != 0 {
			t.Errorf("%s: empty peers should yield empty assignment, got %d entries", s, len(got))
		}
	}
}

func TestRoundRobinDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	notes := testNotes(261.63, 329.63, 392.0)
	peers := testPeers(5)

	first := Distribute(notes, peers, StrategyRoundRobin, rng)
	for i, id := range peers {
		want := i % len(notes)
		if first[id].Index != want {
			t.Errorf("peer %s: got note index %d, want %d", id, first[id].Index, want)
		}
	}

	second := Distribute(notes, peers, StrategyRoundRobin, rng)
	if !reflect.DeepEqual(first, second) {
		t.Error("round-robin should be deterministic across repeated calls")
	}
}

func TestBalancedCounts(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	cases := []struct{ peers, notes int }{
		{1, 1}, {2, 3}, {3, 3}, {4, 3}, {7, 3}, {10, 4}, {12, 5}, {100, 7},
	}
	for _, tc := range cases {
		notes := make([]model.Note, tc.notes)
		for i := range notes {
			notes[i] = model.NewNote(100 + float64(i)*50)
		}
		assignment := Distribute(notes, testPeers(tc.peers), StrategyBalanced, rng)

		counts := countsByIndex(assignment, tc.notes)
		floor := tc.peers / tc.notes
		ceil := floor
		if tc.peers%tc.notes != 0 {
			ceil++
		}
		sum := 0
		for i, n := range counts {
			if n != floor && n != ceil {
				t.Errorf("M=%d N=%d: note %d has %d peers, want %d or %d", tc.peers, tc.notes, i, n, floor, ceil)
			}
			sum += n
		}
		if sum != tc.peers {
			t.Errorf("M=%d N=%d: counts sum to %d, want %d", tc.peers, tc.notes, sum, tc.peers)
		}
	}
}

func TestRandomizedBalancedMatchesBalancedHistogram(t *testing.T) {
	notes := testNotes(220, 275, 330)
	peers := testPeers(8)

	balanced := Distribute(notes, peers, StrategyBalanced, rand.New(rand.NewSource(1)))
	wantCounts := countsByIndex(balanced, len(notes))

	for seed := int64(0); seed < 20; seed++ {
		randomized := Distribute(notes, peers, StrategyRandomizedBalanced, rand.New(rand.NewSource(seed)))
		if got := countsByIndex(randomized, len(notes)); !reflect.DeepEqual(got, wantCounts) {
			t.Fatalf("seed %d: randomized-balanced counts %v, balanced counts %v", seed, got, wantCounts)
		}
	}
}

func TestRandomizedBalancedVariesMapping(t *testing.T) {
	notes := testNotes(220, 275, 330)
	peers := testPeers(12)

	balanced := Distribute(notes, peers, StrategyBalanced, rand.New(rand.NewSource(1)))

	varied := false
	for seed := int64(0); seed < 20; seed++ {
		randomized := Distribute(notes, peers, StrategyRandomizedBalanced, rand.New(rand.NewSource(seed)))
		if !reflect.DeepEqual(randomized, balanced) {
			varied = true
			break
		}
	}
	if !varied {
		t.Error("randomized-balanced never produced a different peer mapping than balanced across 20 seeds")
	}
}

func TestWeightedBiasesRootAndFifth(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	// C4, E4, G4: root is C4, G4 sits a just fifth above it.
	notes := testNotes(261.63, 329.63, 392.0)

	assignment := Distribute(notes, testPeers(5), StrategyWeighted, rng)
	counts := countsByIndex(assignment, len(notes))

	if counts[0] != 2 {
		t.Errorf("root should take an extra peer: got %d, want 2", counts[0])
	}
	if counts[2] != 2 {
		t.Errorf("fifth should take an extra peer: got %d, want 2", counts[2])
	}
	if counts[1] != 1 {
		t.Errorf("third should keep the base share: got %d, want 1", counts[1])
	}
}

func TestDuplicateFrequenciesAreDistinctSlots(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	notes := []model.Note{model.NewNote(220), model.NewNote(220)}

	assignment := Distribute(notes, testPeers(4), StrategyBalanced, rng)
	counts := countsByIndex(assignment, 2)
	if counts[0] != 2 || counts[1] != 2 {
		t.Errorf("duplicate-frequency slots should each get peers: got %v", counts)
	}
}

func TestRandomCoversOnlyChordNotes(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	notes := testNotes(220, 330)

	assignment := Distribute(notes, testPeers(50), StrategyRandom, rng)
	for id, a := range assignment {
		if a.Index < 0 || a.Index >= len(notes) {
			t.Fatalf("peer %s assigned out-of-range note index %d", id, a.Index)
		}
	}
}

func TestParseStrategyClampsUnknown(t *testing.T) {
	if got := ParseStrategy("stochastic-v2"); got != StrategyRoundRobin {
		t.Errorf("unknown strategy should clamp to round-robin, got %s", got)
	}
	if got := ParseStrategy("weighted"); got != StrategyWeighted {
		t.Errorf("known strategy should parse: got %s", got)
	}
}
