package graph

import (
	"fmt"
	"sort"
)

// ChromaticNumber estimates the graph's chromatic number with the
// greedy Welsh-Powell coloring: nodes in descending degree order, each
// assigned the smallest color not already used by an already-colored
// neighbor. The true chromatic number is NP-hard to compute exactly;
// this is the same greedy upper-bound approximation used to gauge
// whether the available slots can plausibly cover the conflict graph.
func (g *Graph) ChromaticNumber() int {
	n := len(g.Nodes)
	if n == 0 {
		return 0
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return g.Degree(order[a]) > g.Degree(order[b])
	})

	colors := make(map[int]int, n)
	for _, idx := range order {
		used := make(map[int]bool)
		for neighbor := range g.adjacency[idx] {
			if c, ok := colors[neighbor]; ok {
				used[c] = true
			}
		}
		color := 0
		for used[color] {
			color++
		}
		colors[idx] = color
	}

	max := 0
	for _, c := range colors {
		if c > max {
			max = c
		}
	}
	return max + 1
}

// Clique is a set of mutually adjacent node indices: every assignment
// in it conflicts with every other, so all need distinct slots.
type Clique []int

// FindCliques searches for triangles (3-node cliques) in the graph, up
// to maxCliques of them. It is a brute-force O(n^3) scan, not a
// maximum-clique search; three mutually conflicting assignments are
// already a strong infeasibility signal.
func (g *Graph) FindCliques(maxCliques int) []Clique {
	var cliques []Clique
	n := len(g.Nodes)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if !g.adjacency[i][j] {
				continue
			}
			for k := j + 1; k < n; k++ {
				if g.adjacency[i][k] && g.adjacency[j][k] {
					cliques = append(cliques, Clique{i, j, k})
					if len(cliques) >= maxCliques {
						return cliques
					}
				}
			}
		}
	}
	return cliques
}

// FeasibilityEstimate reports whether the approximate chromatic number
// fits within the available slot count, and a human-readable reason.
// This is a necessary-condition heuristic, not a proof: it can return
// true for an instance that the checker's hard constraints still rule
// infeasible (the chromatic bound ignores shift/availability/budget
// constraints entirely), and it can never substitute for running the
// search.
func (g *Graph) FeasibilityEstimate(slotsAvailable int) (bool, string) {
	chromatic := g.ChromaticNumber()
	if chromatic <= slotsAvailable {
		return true, fmt.Sprintf("approximately feasible: needs ~%d slots and %d are available", chromatic, slotsAvailable)
	}
	deficit := chromatic - slotsAvailable
	return false, fmt.Sprintf("approximately infeasible: needs ~%d slots but only %d are available (deficit %d)", chromatic, slotsAvailable, deficit)
}

// ConflictBreakdown classifies the graph's edges by the rule that
// created them: GroupConflicts for nodes sharing a group (type G),
// InstructorConflicts for nodes sharing an eligible instructor pool
// (type P).
type ConflictBreakdown struct {
	GroupConflicts      int
	InstructorConflicts int
	Total               int
	PercentGroup        float64
	PercentInstructor   float64
}

// ConflictsByType walks every edge once and classifies it by comparing
// the two endpoints' groups, reproducing the edge-type split that Build
// establishes without needing to store a separate edge-type label.
func (g *Graph) ConflictsByType() ConflictBreakdown {
	var b ConflictBreakdown
	for i := range g.Nodes {
		for j := range g.adjacency[i] {
			if j <= i {
				continue
			}
			if g.Nodes[i].Group == g.Nodes[j].Group {
				b.GroupConflicts++
			} else {
				b.InstructorConflicts++
			}
		}
	}
	b.Total = b.GroupConflicts + b.InstructorConflicts
	if b.Total > 0 {
		b.PercentGroup = float64(b.GroupConflicts) / float64(b.Total) * 100
		b.PercentInstructor = float64(b.InstructorConflicts) / float64(b.Total) * 100
	}
	return b
}
