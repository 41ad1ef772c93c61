package satcore

import (
	"github.com/rawblock/zzcore/internal/proof"
	"github.com/rawblock/zzcore/pkg/lit"
)

// ClauseRef indexes into the solver's clause store. This module stores
// clauses as a slice of structs rather than a raw literal byte pool with
// hand-computed offsets; ClauseRef plays the same stable-identity role the
// original flat-pool offset does. Refs never move: freed refs are reused
// through a freelist, and compaction only drops freed clauses' literal
// slices, so no reference needs rewriting.
type ClauseRef int32

const nilRef ClauseRef = -1

// clause is one clause's storage: its literals (positions 0 and 1 are the
// two watched literals whenever len >= 2), whether it was learned,
// per-clause activity for database reduction, and the tying proof id.
type clause struct {
	lits     []lit.Lit
	learnt   bool
	activity float64
	proofID  proof.ClauseID
	freed    bool
}

func (c *clause) Len() int { return len(c.lits) }

// clauseDB owns every clause (problem and learnt, intermixed by ref) plus
// bookkeeping for reduce_db and compaction.
type clauseDB struct {
	clauses    []*clause
	learnts    []ClauseRef
	free       []ClauseRef
	freedWords int
	liveWords  int
}

func newClauseDB() *clauseDB { return &clauseDB{} }

func (db *clauseDB) alloc(lits []lit.Lit, learnt bool, pid proof.ClauseID) ClauseRef {
	c := &clause{lits: lits, learnt: learnt, proofID: pid}
	var ref ClauseRef
	if n := len(db.free); n > 0 {
		ref = db.free[n-1]
		db.free = db.free[:n-1]
		db.clauses[ref] = c
	} else {
		ref = ClauseRef(len(db.clauses))
		db.clauses = append(db.clauses, c)
	}
	if learnt {
		db.learnts = append(db.learnts, ref)
	}
	db.liveWords += len(lits)
	return ref
}

func (db *clauseDB) get(ref ClauseRef) *clause { return db.clauses[ref] }

// release marks ref's storage reclaimable. The caller is responsible for
// having already removed ref from every watcher list and from reason
// pointers.
func (db *clauseDB) release(ref ClauseRef) {
	c := db.clauses[ref]
	if c.freed {
		return
	}
	c.freed = true
	db.liveWords -= len(c.lits)
	db.freedWords += len(c.lits)
	db.free = append(db.free, ref)
}

// needsCompact reports whether freed literal words exceed 5% of live words,
// the threshold at which the pool should be packed.
func (db *clauseDB) needsCompact() bool {
	if db.liveWords == 0 {
		return false
	}
	return float64(db.freedWords) > 0.05*float64(db.liveWords)
}
