// Package checker validates a candidate placement against the hard
// constraints in a fixed, deterministic order. Every check is O(1)
// given the search state's indexes.
package checker

import (
	"github.com/russross/timetable-solver/internal/domain"
	"github.com/russross/timetable-solver/internal/state"
)

// Reason names a hard-constraint violation. OK means no violation.
type Reason int

const (
	OK Reason = iota
	SlotShift
	GroupBusy
	InstructorBusy
	InstructorBudget
	InstructorShift
	InstructorAvailability
)

func (r Reason) String() string {
	switch r {
	case OK:
		return "OK"
	case SlotShift:
		return "SlotShift"
	case GroupBusy:
		return "GroupBusy"
	case InstructorBusy:
		return "InstructorBusy"
	case InstructorBudget:
		return "InstructorBudget"
	case InstructorShift:
		return "InstructorShift"
	case InstructorAvailability:
		return "InstructorAvailability"
	default:
		return "Unknown"
	}
}

// Check validates (group, course, instructor, slot) against state,
// evaluating the six rules in a fixed order so rejection reasons are
// deterministic across runs: first failure wins.
func Check(s *state.State, group domain.GroupID, course domain.CourseID, instructor domain.InstructorID, slot domain.Slot) Reason {
	grp := s.Model.Group(group)
	in := s.Model.Instructor(instructor)

	if slot.Shift != grp.Shift {
		return SlotShift
	}
	if s.Grid[group][slot].Occupied {
		return GroupBusy
	}
	if s.InstructorOccupancy[instructor][slot] {
		return InstructorBusy
	}
	if s.InstructorHours[instructor] >= in.WeeklyBudget {
		return InstructorBudget
	}
	if in.PreferredShift != domain.Both && in.PreferredShift != slot.Shift {
		return InstructorShift
	}
	if !in.Available(slot.Day, slot.Hour) {
		return InstructorAvailability
	}

	return OK
}
