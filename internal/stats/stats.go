// Package stats derives aggregate solve metrics from the decision tree
// and the wall-clock time measured around the engine.
package stats

import (
	"time"

	"github.com/russross/timetable-solver/internal/tree"
)

// Statistics is the statistics record reported alongside a solve.
type Statistics struct {
	NodesExplored    int
	Backtracks       int
	MaxDepth         int
	TimeSeconds      float64
	NodesPerSecond   float64
	BranchingFactor  float64
	SuccessRate      float64
	SolutionLength   int
	NodesByKind      map[string]int
}

// Derive computes the full statistics record for a finished solve.
func Derive(t *tree.Tree, elapsed time.Duration) Statistics {
	ts := t.Stats()

	seconds := elapsed.Seconds()
	var nps float64
	if seconds > 0 {
		nps = float64(ts.Total) / seconds
	}

	decisions := ts.ByKind["decision"]
	successDecisions, failedDecisions := 0, 0
	for _, n := range t.Nodes {
		if n.Kind != tree.Decision {
			continue
		}
		switch n.Status {
		case tree.Success:
			successDecisions++
		case tree.Failure:
			failedDecisions++
		}
	}
	var successRate float64
	if decisions > 0 {
		successRate = float64(successDecisions) / float64(decisions)
	}

	// A backtrack is an undone commitment: a decision node that was
	// explored and then marked failure. Conflict nodes are rejections
	// that never committed, so they don't count.
	return Statistics{
		NodesExplored:   ts.Total,
		Backtracks:      failedDecisions,
		MaxDepth:        ts.MaxDepth,
		TimeSeconds:     seconds,
		NodesPerSecond:  nps,
		BranchingFactor: ts.BranchingFactor,
		SuccessRate:     successRate,
		SolutionLength:  len(t.SolutionPath()),
		NodesByKind:     ts.ByKind,
	}
}
