// Package models holds the JSON-facing value types exchanged across
// cmd/zzengine's HTTP and audit-log boundaries.
package models

import "time"

// SolveOutcome is the textual form of a satcore.Result suitable for JSON.
type SolveOutcome string

const (
	OutcomeSAT   SolveOutcome = "sat"
	OutcomeUnsat SolveOutcome = "unsat"
	OutcomeUndef SolveOutcome = "undef"
)

// RunRecord summarizes one /solve invocation: enough to audit what ran and
// how it went without persisting the CNF body itself (the core's §1
// Non-goals forbid netlist/problem persistence — this is a run-history
// sink, not a case database).
type RunRecord struct {
	RunID         string       `json:"runId"`
	CNFDigest     string       `json:"cnfDigest"`
	NumVars       int          `json:"numVars"`
	NumClauses    int          `json:"numClauses"`
	Outcome       SolveOutcome `json:"outcome"`
	ConflictCount int          `json:"conflictCount"`
	RestartCount  int          `json:"restartCount"`
	DurationMs    int64        `json:"durationMs"`
	CreatedAt     time.Time    `json:"createdAt"`
}

// StatsSnapshot is the JSON body returned by GET /stats: a point-in-time
// read of the most recently solved problem's solver-internal counters,
// alongside the activity/restart distribution metrics internal/metrics
// derives from it.
type StatsSnapshot struct {
	RunID            string      `json:"runId,omitempty"`
	NumVars          int         `json:"numVars"`
	NumClauses       int         `json:"numClauses"`
	NumLearnts       int         `json:"numLearnts"`
	VirtualTime      uint64      `json:"virtualTime"`
	RestartIntervals []int       `json:"restartIntervals"`
	RestartHistogram map[int]int `json:"restartHistogram"`
	RestartMean      float64     `json:"restartMean"`
	RestartStddev    float64     `json:"restartStddev"`
	ActivityBuckets  []int       `json:"activityBuckets,omitempty"`
}
