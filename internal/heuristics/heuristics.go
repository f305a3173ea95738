// Package heuristics implements MRV+degree variable ordering and
// LCV-approximate value ordering as pure functions of (state,
// demand-unit) / (state, slot). Neither function mutates state or the
// demand collection.
package heuristics

import (
	"sort"

	"github.com/russross/timetable-solver/internal/domain"
	"github.com/russross/timetable-solver/internal/graph"
	"github.com/russross/timetable-solver/internal/state"
)

// FreeSlots counts the empty shift slots remaining for a group.
func FreeSlots(s *state.State, group domain.GroupID) int {
	free := 0
	for _, cell := range s.Grid[group] {
		if !cell.Occupied {
			free++
		}
	}
	return free
}

// Degree returns the conflict-graph degree of a (group, course) demand
// unit's node, or 0 if the node was never built (should not happen for
// a well-formed model).
func Degree(g *graph.Graph, group domain.GroupID, course domain.CourseID, cohort int) int {
	idx, ok := g.Index(graph.Node{Group: group, Course: course, Cohort: cohort})
	if !ok {
		return 0
	}
	return g.Degree(idx)
}

// scoredUnit keeps a demand unit's MRV/degree keys attached to it so
// sorting can't separate a unit from its scores.
type scoredUnit struct {
	unit domain.DemandUnit
	free int
	deg  int
}

// SelectDemand returns a copy of state.Demand sorted ascending by
// free-slots (MRV), breaking ties descending by conflict-graph degree.
// The engine always attempts the first unit of the returned slice.
func SelectDemand(s *state.State, g *graph.Graph) []domain.DemandUnit {
	scored := make([]scoredUnit, len(s.Demand))
	for i, d := range s.Demand {
		cohort := s.Model.Course(d.Course).Cohort
		scored[i] = scoredUnit{
			unit: d,
			free: FreeSlots(s, d.Group),
			deg:  Degree(g, d.Group, d.Course, cohort),
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		if scored[a].free != scored[b].free {
			return scored[a].free < scored[b].free
		}
		return scored[a].deg > scored[b].deg
	})

	ordered := make([]domain.DemandUnit, len(scored))
	for i, sc := range scored {
		ordered[i] = sc.unit
	}
	return ordered
}

// scoredSlot pairs a slot with its LCV-approximate restrictiveness
// score for stable sorting.
type scoredSlot struct {
	slot  domain.Slot
	score int
}

// OrderSlots ranks the candidate slots for a (group, course) demand unit
// ascending by restrictiveness:
//
//   - +2 per already-occupied slot of the same group on the same day
//   - +1 per occupied slot on that day (mild smoothing on top of the
//     same piling count; the group is the only one this group-scoped
//     ranking has visibility into)
//   - -3 if the slot's hour < 10
//   - +3 if the slot's hour > 18
//
// Early, sparsely-loaded days preserve the most future options. Ties
// (including the common all-zero case) fall back to slot catalog
// order: day-major, hour-ascending.
func OrderSlots(s *state.State, group domain.GroupID, shift domain.Shift) []domain.Slot {
	catalog := domain.Slots(shift)

	occupiedOnDay := make(map[domain.DayID]int)
	for sl, cell := range s.Grid[group] {
		if cell.Occupied {
			occupiedOnDay[sl.Day]++
		}
	}

	scored := make([]scoredSlot, len(catalog))
	for i, sl := range catalog {
		score := 3 * occupiedOnDay[sl.Day]
		if sl.Hour < 10 {
			score -= 3
		}
		if sl.Hour > 18 {
			score += 3
		}
		scored[i] = scoredSlot{slot: sl, score: score}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].score < scored[b].score
	})

	out := make([]domain.Slot, len(scored))
	for i, sc := range scored {
		out[i] = sc.slot
	}
	return out
}
