// Package state holds the mutable incremental search state: the
// schedule grid, instructor occupancy, instructor hours, and the
// residual demand collection. Every mutation is paired with an exact
// inverse so the backtracking engine can restore bit-for-bit
// equivalence on undo.
package state

import "github.com/russross/timetable-solver/internal/domain"

// InvariantViolation marks an internal inconsistency: a commit onto
// already-occupied state, or an undo with nothing to undo. These are
// bugs, not business outcomes, so they panic rather than returning an
// error; the caller (cmd/timetable) recovers at the top level.
type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string { return e.Message }

// Cell is one (group, slot) grid entry.
type Cell struct {
	Occupied   bool
	Course     domain.CourseID
	Instructor domain.InstructorID
}

// State is the single mutable record the engine advances and rewinds.
type State struct {
	Model *domain.Model

	// Grid is pre-populated with empty entries only for each group's
	// shift slots.
	Grid map[domain.GroupID]map[domain.Slot]Cell

	// InstructorOccupancy is sparse: absence means free.
	InstructorOccupancy map[domain.InstructorID]map[domain.Slot]bool

	InstructorHours map[domain.InstructorID]int

	// Demand is the unordered collection of unfinished demand units;
	// heuristics re-sort their own working copy each step.
	Demand []domain.DemandUnit
}

// New builds the initial search state for a model: an empty grid over
// each group's shift slots, no instructor occupancy, zero hours, and
// the full initial demand decomposition.
func New(m *domain.Model) *State {
	s := &State{
		Model:               m,
		Grid:                make(map[domain.GroupID]map[domain.Slot]Cell),
		InstructorOccupancy: make(map[domain.InstructorID]map[domain.Slot]bool),
		InstructorHours:     make(map[domain.InstructorID]int),
	}

	for i := range m.Groups {
		grp := &m.Groups[i]
		slots := domain.Slots(grp.Shift)
		cells := make(map[domain.Slot]Cell, len(slots))
		for _, sl := range slots {
			cells[sl] = Cell{}
		}
		s.Grid[grp.ID] = cells
	}

	for i := range m.Instructors {
		s.InstructorOccupancy[m.Instructors[i].ID] = make(map[domain.Slot]bool)
		s.InstructorHours[m.Instructors[i].ID] = 0
	}

	s.Demand = append(s.Demand, m.InitialDemand...)

	return s
}

// FindDemand returns the index of the demand unit for (group, course),
// or -1 if none remains.
func (s *State) FindDemand(group domain.GroupID, course domain.CourseID) int {
	for i := range s.Demand {
		if s.Demand[i].Group == group && s.Demand[i].Course == course {
			return i
		}
	}
	return -1
}

// Commit records a placement: marks the group's slot occupied, marks
// the instructor's slot busy, adds one hour to the instructor's total,
// and decrements the matching demand unit's hours-remaining, removing
// it from Demand when it reaches zero. It reports whether the unit was
// removed, which the caller must pass back to Undo.
func (s *State) Commit(group domain.GroupID, course domain.CourseID, instructor domain.InstructorID, slot domain.Slot) (removed bool) {
	if s.Grid[group][slot].Occupied {
		panic(&InvariantViolation{Message: "commit onto an already-occupied grid cell"})
	}
	if s.InstructorOccupancy[instructor][slot] {
		panic(&InvariantViolation{Message: "commit onto an already-busy instructor slot"})
	}

	s.Grid[group][slot] = Cell{Occupied: true, Course: course, Instructor: instructor}
	s.InstructorOccupancy[instructor][slot] = true
	s.InstructorHours[instructor]++

	idx := s.FindDemand(group, course)
	if idx < 0 {
		panic(&InvariantViolation{Message: "commit for a demand unit with no remaining hours"})
	}
	s.Demand[idx].HoursRemaining--
	if s.Demand[idx].HoursRemaining == 0 {
		s.Demand = append(s.Demand[:idx], s.Demand[idx+1:]...)
		return true
	}
	return false
}

// Undo exactly reverses the Commit that produced this placement: clears
// the group's slot, frees the instructor's slot, removes the hour, and
// either increments the existing demand unit's hours-remaining or
// reinserts a unit with hours-remaining 1 if the unit had been removed.
// The reinserted unit is appended; Demand order carries no heuristic
// meaning, so appending keeps undo cheap.
func (s *State) Undo(group domain.GroupID, course domain.CourseID, instructor domain.InstructorID, slot domain.Slot, wasRemoved bool) {
	s.Grid[group][slot] = Cell{}
	delete(s.InstructorOccupancy[instructor], slot)
	s.InstructorHours[instructor]--

	if wasRemoved {
		s.Demand = append(s.Demand, domain.DemandUnit{Group: group, Course: course, HoursRemaining: 1})
		return
	}
	idx := s.FindDemand(group, course)
	if idx < 0 {
		panic(&InvariantViolation{Message: "undo for a demand unit that no longer exists"})
	}
	s.Demand[idx].HoursRemaining++
}

// Done reports whether all demand has been satisfied.
func (s *State) Done() bool {
	return len(s.Demand) == 0
}
