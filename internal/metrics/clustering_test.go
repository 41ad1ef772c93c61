package metrics

import (
	"math"
	"testing"

	"github.com/rawblock/zzcore/internal/satcore"
	"github.com/rawblock/zzcore/pkg/lit"
)

func TestAdjustedRandIndex_PerfectAgreement(t *testing.T) {
	predicted := []int{0, 0, 1, 1, 2, 2}
	groundTruth := []int{0, 0, 1, 1, 2, 2}

	ari := AdjustedRandIndex(predicted, groundTruth)

	if math.Abs(ari-1.0) > 0.01 {
		t.Errorf("Expected ARI=1.0 for perfect agreement. Got: %f", ari)
	}
}

func TestAdjustedRandIndex_RandomPartition(t *testing.T) {
	// Two very different partitions should yield ARI near 0
	predicted := []int{0, 0, 0, 1, 1, 1}
	groundTruth := []int{0, 1, 0, 1, 0, 1}

	ari := AdjustedRandIndex(predicted, groundTruth)

	if ari > 0.5 {
		t.Errorf("Expected ARI near 0 for dissimilar partitions. Got: %f", ari)
	}
}

func TestVariationOfInformation_Identical(t *testing.T) {
	predicted := []int{0, 0, 1, 1, 2, 2}
	groundTruth := []int{0, 0, 1, 1, 2, 2}

	vi := VariationOfInformation(predicted, groundTruth)

	if vi > 0.01 {
		t.Errorf("Expected VI=0.0 for identical partitions. Got: %f", vi)
	}
}

func TestVariationOfInformation_Different(t *testing.T) {
	predicted := []int{0, 0, 0, 1, 1, 1}
	groundTruth := []int{0, 1, 0, 1, 0, 1}

	vi := VariationOfInformation(predicted, groundTruth)

	if vi < 0.1 {
		t.Errorf("Expected VI > 0 for different partitions. Got: %f", vi)
	}
}

func TestActivityBucketsCoversEveryVariable(t *testing.T) {
	s := satcore.New(nil)
	for i := 0; i < 9; i++ {
		if _, err := s.AddVariable(); err != nil {
			t.Fatal(err)
		}
	}
	labels := ActivityBuckets(s, 3)
	if len(labels) != 9 {
		t.Fatalf("got %d labels, want 9", len(labels))
	}
	for _, l := range labels {
		if l < 0 || l >= 3 {
			t.Errorf("label %d out of [0,3) range", l)
		}
	}
}

func TestActivityBucketsComparableAcrossCheckpoints(t *testing.T) {
	s := satcore.New(nil)
	vars := make([]satcore.Var, 6)
	for i := range vars {
		v, err := s.AddVariable()
		if err != nil {
			t.Fatal(err)
		}
		vars[i] = v
	}
	before := ActivityBuckets(s, 2)

	if _, err := s.AddClause([]lit.Lit{satcore.MkLit(vars[0], false), satcore.MkLit(vars[1], false)}); err != nil {
		t.Fatal(err)
	}
	after := ActivityBuckets(s, 2)

	if len(before) != len(after) {
		t.Fatalf("label count changed between checkpoints: %d vs %d", len(before), len(after))
	}
	// Identical partitions (no activity bumps happened outside a search)
	// should compare as perfect agreement.
	if ari := AdjustedRandIndex(before, after); math.Abs(ari-1.0) > 0.01 {
		t.Errorf("expected ARI=1.0 comparing unchanged activity snapshots, got %f", ari)
	}
}

func TestRestartIntervalHistogramAndStats(t *testing.T) {
	s := satcore.New(nil)
	// Solve a 20-variable problem and check that the histogram accounts for
	// every restart the solver recorded (Luby schedule, base unit 100
	// conflicts); the problem is easy, so that may be none.
	vars := make([]satcore.Var, 20)
	for i := range vars {
		v, err := s.AddVariable()
		if err != nil {
			t.Fatal(err)
		}
		vars[i] = v
	}
	// Pairwise at-most-one clauses; satisfiable, e.g. with every variable false.
	for i := 0; i < len(vars); i++ {
		for j := i + 1; j < len(vars); j++ {
			s.AddClause([]lit.Lit{
				satcore.MkLit(vars[i], true),
				satcore.MkLit(vars[j], true),
			})
		}
	}
	s.Solve(nil)

	hist := RestartIntervalHistogram(s, 50)
	mean, stddev := RestartIntervalStats(s)
	total := 0
	for _, c := range hist {
		total += c
	}
	if total != len(s.RestartIntervals()) {
		t.Errorf("histogram total %d != recorded restart count %d", total, len(s.RestartIntervals()))
	}
	if mean < 0 || stddev < 0 {
		t.Errorf("expected non-negative mean/stddev, got %f/%f", mean, stddev)
	}
}
