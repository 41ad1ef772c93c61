// Package metrics reports distributional statistics over a running solver:
// variable-activity partitions compared across two checkpoints via the same
// Adjusted Rand Index / Variation of Information combinatorics used for
// comparing any two label partitions, and the distribution of conflict
// counts between successive restarts.
package metrics

import (
	"math"

	"github.com/rawblock/zzcore/internal/satcore"
)

// AdjustedRandIndex computes the Adjusted Rand Index (ARI) between two
// label partitions of the same n items — here, two activity-bucket
// snapshots of the same variable set taken at different points in a solve,
// exposing how much the solver's focus has shifted between checkpoints.
//
// ARI = (RI - Expected_RI) / (Max_RI - Expected_RI)
// where RI = (a + b) / C(n, 2)
//   a = number of pairs in the same bucket in both snapshots
//   b = number of pairs in different buckets in both snapshots
//
// Values range from -1 (worse than random) to 1 (perfect agreement). 0 = random.
func AdjustedRandIndex(predicted, groundTruth []int) float64 {
	n := len(predicted)
	if n != len(groundTruth) || n < 2 {
		return 0.0
	}

	predLabels := uniqueLabels(predicted)
	gtLabels := uniqueLabels(groundTruth)

	predMap := make(map[int]int)
	for i, l := range predLabels {
		predMap[l] = i
	}
	gtMap := make(map[int]int)
	for i, l := range gtLabels {
		gtMap[l] = i
	}

	nij := make([][]int, len(predLabels))
	for i := range nij {
		nij[i] = make([]int, len(gtLabels))
	}

	for k := 0; k < n; k++ {
		pi := predMap[predicted[k]]
		gi := gtMap[groundTruth[k]]
		nij[pi][gi]++
	}

	rowSums := make([]int, len(predLabels))
	colSums := make([]int, len(gtLabels))

	for i := range nij {
		for j := range nij[i] {
			rowSums[i] += nij[i][j]
			colSums[j] += nij[i][j]
		}
	}

	sumNijC2 := 0.0
	for i := range nij {
		for j := range nij[i] {
			sumNijC2 += comb2(nij[i][j])
		}
	}

	sumAiC2 := 0.0
	for _, a := range rowSums {
		sumAiC2 += comb2(a)
	}

	sumBjC2 := 0.0
	for _, b := range colSums {
		sumBjC2 += comb2(b)
	}

	nC2 := comb2(n)
	if nC2 == 0 {
		return 0.0
	}

	expectedIndex := (sumAiC2 * sumBjC2) / nC2
	maxIndex := 0.5 * (sumAiC2 + sumBjC2)

	denominator := maxIndex - expectedIndex
	if math.Abs(denominator) < 1e-12 {
		return 1.0
	}

	return (sumNijC2 - expectedIndex) / denominator
}

// VariationOfInformation computes the VI distance between two partitions.
// VI(C, C') = H(C|C') + H(C'|C), the sum of conditional entropies. Lower is
// better; 0 means identical partitions.
func VariationOfInformation(predicted, groundTruth []int) float64 {
	n := len(predicted)
	if n != len(groundTruth) || n < 2 {
		return 0.0
	}

	nf := float64(n)

	predLabels := uniqueLabels(predicted)
	gtLabels := uniqueLabels(groundTruth)

	predMap := make(map[int]int)
	for i, l := range predLabels {
		predMap[l] = i
	}
	gtMap := make(map[int]int)
	for i, l := range gtLabels {
		gtMap[l] = i
	}

	nij := make([][]int, len(predLabels))
	for i := range nij {
		nij[i] = make([]int, len(gtLabels))
	}
	for k := 0; k < n; k++ {
		nij[predMap[predicted[k]]][gtMap[groundTruth[k]]]++
	}

	rowSums := make([]int, len(predLabels))
	colSums := make([]int, len(gtLabels))
	for i := range nij {
		for j := range nij[i] {
			rowSums[i] += nij[i][j]
			colSums[j] += nij[i][j]
		}
	}

	hCgivenCp := 0.0
	for i := range nij {
		for j := range nij[i] {
			if nij[i][j] > 0 && colSums[j] > 0 {
				pij := float64(nij[i][j]) / nf
				hCgivenCp -= pij * math.Log2(float64(nij[i][j])/float64(colSums[j]))
			}
		}
	}

	hCpgivenC := 0.0
	for i := range nij {
		for j := range nij[i] {
			if nij[i][j] > 0 && rowSums[i] > 0 {
				pij := float64(nij[i][j]) / nf
				hCpgivenC -= pij * math.Log2(float64(nij[i][j])/float64(rowSums[i]))
			}
		}
	}

	return hCgivenCp + hCpgivenC
}

func comb2(n int) float64 {
	if n < 2 {
		return 0
	}
	return float64(n) * float64(n-1) / 2.0
}

func uniqueLabels(labels []int) []int {
	seen := make(map[int]bool)
	var result []int
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			result = append(result, l)
		}
	}
	return result
}

// ActivityBuckets assigns each currently-allocated solver variable a bucket
// label in [0, buckets) by its rank among activities (lowest activity ->
// bucket 0), returning one label per variable id starting at variable 2
// (the first non-reserved id). Two calls at different points in a solve
// produce comparable label slices for AdjustedRandIndex/
// VariationOfInformation, exposing how much the solver's attention (as
// tracked by VSIDS-style activity) has reshuffled between checkpoints.
func ActivityBuckets(s *satcore.Solver, buckets int) []int {
	if buckets < 1 {
		buckets = 1
	}
	n := s.NumVars()
	if n == 0 {
		return nil
	}
	type va struct {
		v   int
		act float64
	}
	items := make([]va, n)
	for i := 0; i < n; i++ {
		v := satcore.Var(i + 2)
		items[i] = va{v: i, act: s.ActivityOf(v)}
	}
	// Stable rank sort (ties broken by variable order) avoids a nondeterministic bucket assignment across runs with equal activities.
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && items[j].act < items[j-1].act; j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
	labels := make([]int, n)
	for rank, it := range items {
		labels[it.v] = (rank * buckets) / n
	}
	return labels
}

// RestartIntervalHistogram buckets a solver's recorded restart intervals
// (conflict counts between successive restarts) into fixed-width bins,
// reporting how many restarts fell in each bin.
func RestartIntervalHistogram(s *satcore.Solver, bucketWidth int) map[int]int {
	if bucketWidth < 1 {
		bucketWidth = 1
	}
	hist := make(map[int]int)
	for _, interval := range s.RestartIntervals() {
		bin := interval / bucketWidth
		hist[bin]++
	}
	return hist
}

// RestartIntervalStats returns the mean and population standard deviation
// of a solver's recorded restart intervals.
func RestartIntervalStats(s *satcore.Solver) (mean, stddev float64) {
	intervals := s.RestartIntervals()
	if len(intervals) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range intervals {
		sum += float64(v)
	}
	mean = sum / float64(len(intervals))
	var variance float64
	for _, v := range intervals {
		d := float64(v) - mean
		variance += d * d
	}
	variance /= float64(len(intervals))
	return mean, math.Sqrt(variance)
}
