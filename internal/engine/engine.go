// Package engine is the backtracking search: recursive depth-first
// search with prune/commit/undo, driven by the heuristics package and
// gated by the checker package, logging every attempt to a decision
// tree. A single Engine is single-threaded and synchronous: it owns
// its state and tree for the lifetime of one Solve call and performs
// no I/O.
package engine

import (
	"context"

	"github.com/russross/timetable-solver/internal/checker"
	"github.com/russross/timetable-solver/internal/domain"
	"github.com/russross/timetable-solver/internal/graph"
	"github.com/russross/timetable-solver/internal/heuristics"
	"github.com/russross/timetable-solver/internal/state"
	"github.com/russross/timetable-solver/internal/tree"
)

// Warning is a non-fatal post-solve completeness discrepancy: a
// (group, course) demand unit whose committed hours didn't match its
// declared weekly hours. The engine should never actually produce one;
// its presence signals an internal bug, not a user-facing condition.
type Warning struct {
	Group  domain.GroupID
	Course domain.CourseID
	Wanted int
	Got    int
}

// Result is the engine's discriminated outcome. It is a plain struct,
// never an error: an infeasible instance is data, not a failure to be
// propagated.
type Result struct {
	OK       bool
	Schedule []domain.Placement
	Tree     *tree.Tree
	Warnings []Warning
}

// Engine runs one solve over a domain model and its conflict graph.
// Internal invariant violations surface as a panic of type
// *state.InvariantViolation from within state.Commit/Undo; the caller
// (cmd/timetable) recovers it at the top level rather than the engine
// catching its own bugs.
type Engine struct {
	Model *domain.Model
	Graph *graph.Graph

	// Cancel is an optional cooperative cancellation token, checked at
	// the top of each recursive frame and before each (slot, instructor)
	// candidate. A nil context (or one that is never cancelled) disables
	// this entirely.
	Cancel context.Context
}

// New builds an Engine for the given model, building its conflict graph.
func New(m *domain.Model) *Engine {
	return &Engine{Model: m, Graph: graph.Build(m)}
}

// Solve runs the backtracking search to completion (or exhaustion) and
// returns the discriminated result plus the full decision tree.
func (e *Engine) Solve() Result {
	s := state.New(e.Model)
	t := tree.New()

	solved := e.search(s, t, 0)
	if !solved {
		t.MarkFailure(0)
	}

	result := Result{OK: solved, Tree: t}
	if solved {
		result.Schedule = e.collectSchedule(s)
		result.Warnings = e.completenessCheck(result.Schedule)
	}
	return result
}

func (e *Engine) cancelled() bool {
	if e.Cancel == nil {
		return false
	}
	select {
	case <-e.Cancel.Done():
		return true
	default:
		return false
	}
}

// search is one recursive frame: select the most constrained demand
// unit, enumerate (slot, instructor) candidates in heuristic order,
// check, commit, recurse, undo on failure. parentID is the
// decision-tree node whose subtree this call explores (the root on the
// first call, a decision node on every recursive call).
func (e *Engine) search(s *state.State, t *tree.Tree, parentID int) bool {
	if e.cancelled() {
		return false
	}
	if s.Done() {
		return true
	}

	ordered := heuristics.SelectDemand(s, e.Graph)
	unit := ordered[0]
	grp := e.Model.Group(unit.Group)

	for _, slot := range heuristics.OrderSlots(s, unit.Group, grp.Shift) {
		for _, instructor := range e.Model.EligibleInstructors(unit.Course) {
			if e.cancelled() {
				return false
			}

			reason := checker.Check(s, unit.Group, unit.Course, instructor, slot)
			if reason != checker.OK {
				t.Add(tree.Conflict, tree.Payload{
					Group:          unit.Group,
					Course:         unit.Course,
					Instructor:     instructor,
					Slot:           slot,
					HoursRemaining: unit.HoursRemaining,
					Reason:         reason.String(),
				}, parentID)
				continue
			}

			nodeID := t.Add(tree.Decision, tree.Payload{
				Group:          unit.Group,
				Course:         unit.Course,
				Instructor:     instructor,
				Slot:           slot,
				HoursRemaining: unit.HoursRemaining,
			}, parentID)

			wasRemoved := s.Commit(unit.Group, unit.Course, instructor, slot)

			if e.search(s, t, nodeID) {
				t.MarkSuccess(nodeID)
				return true
			}

			t.MarkFailure(nodeID)
			s.Undo(unit.Group, unit.Course, instructor, slot, wasRemoved)
		}
	}

	return false
}

// collectSchedule reads the committed grid back out as a flat
// placement list, in group order then slot catalog order, so identical
// inputs yield an identical slice across runs.
func (e *Engine) collectSchedule(s *state.State) []domain.Placement {
	var out []domain.Placement
	for _, grp := range e.Model.Groups {
		for _, slot := range domain.Slots(grp.Shift) {
			cell := s.Grid[grp.ID][slot]
			if cell.Occupied {
				out = append(out, domain.Placement{
					Group:      grp.ID,
					Course:     cell.Course,
					Instructor: cell.Instructor,
					Slot:       slot,
				})
			}
		}
	}
	return out
}

// completenessCheck verifies that every (group, course) demand unit's
// committed hours equal its declared weekly hours. A non-empty result
// is a non-fatal warning for the caller; it should never actually be
// non-empty for a well-formed engine run.
func (e *Engine) completenessCheck(schedule []domain.Placement) []Warning {
	got := make(map[domain.GroupID]map[domain.CourseID]int)
	for _, p := range schedule {
		if got[p.Group] == nil {
			got[p.Group] = make(map[domain.CourseID]int)
		}
		got[p.Group][p.Course]++
	}

	var warnings []Warning
	for _, c := range e.Model.Courses {
		for _, grp := range c.Groups {
			have := got[grp][c.ID]
			if have != c.WeeklyHours {
				warnings = append(warnings, Warning{Group: grp, Course: c.ID, Wanted: c.WeeklyHours, Got: have})
			}
		}
	}
	return warnings
}
