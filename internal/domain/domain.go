// Package domain holds the immutable descriptions of groups, courses,
// instructors, and slots that feed the solver. Values here are built once
// from the parsed input and never mutated during search; the mutable
// search-time state lives in package state.
package domain

import "fmt"

// Shift is one of the two daily bands a group, course placement, or
// instructor preference can belong to.
type Shift int

const (
	Morning Shift = iota
	Evening
	Both
)

func (s Shift) String() string {
	switch s {
	case Morning:
		return "Morning"
	case Evening:
		return "Evening"
	case Both:
		return "Both"
	default:
		return fmt.Sprintf("Shift(%d)", int(s))
	}
}

// ParseShift parses the JSON-facing shift strings. Both is only valid for
// an instructor's preferred_shift, never for a group's shift.
func ParseShift(s string) (Shift, error) {
	switch s {
	case "Morning":
		return Morning, nil
	case "Evening":
		return Evening, nil
	case "Both":
		return Both, nil
	default:
		return 0, fmt.Errorf("unknown shift %q", s)
	}
}

// shiftHourBands gives the 7 hour-of-day starts for each shift:
// Morning covers 07:00-14:00, Evening covers 14:00-21:00.
var shiftHourBands = map[Shift][]int{
	Morning: {7, 8, 9, 10, 11, 12, 13},
	Evening: {14, 15, 16, 17, 18, 19, 20},
}

// Days lists the 5 weekdays in catalog order.
var Days = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

// DayID is a dense index into Days, assigned at catalog build time.
type DayID int

// GroupID, CourseID, InstructorID are dense integer handles assigned
// when the model is built, so the hot path never hashes a string.
// Slots need no handle: they are small comparable values used directly
// as map keys.
type (
	GroupID      int
	CourseID     int
	InstructorID int
)

// Slot is a (day, hour-of-day, shift) value. Two slots are equal iff all
// three fields match.
type Slot struct {
	Day   DayID
	Hour  int
	Shift Shift
}

// Key returns the canonical string form used for hashing in diagnostic
// output: "day|HH:MM-HH:MM|shift".
func (s Slot) Key() string {
	return fmt.Sprintf("%s|%02d:00-%02d:00|%s", Days[s.Day], s.Hour, s.Hour+1, s.Shift)
}

// Group is a student cohort group. A group belongs to exactly one shift
// and is immutable once parsed.
type Group struct {
	ID     GroupID
	Name   string
	Cohort int
	Shift  Shift
}

// Course is identified by a unique (cohort, name) pair. Groups is the
// set of group ids (of its cohort) that must take it.
type Course struct {
	ID          CourseID
	Name        string
	Cohort      int
	WeeklyHours int
	Groups      []GroupID
}

// AvailabilityInterval is an [start, end) hour-of-day window on a given
// day. Only whole hours are representable; intervals with a nonzero
// minute component are rejected at input validation.
type AvailabilityInterval struct {
	StartHour int
	EndHour   int
}

// Instructor carries a teachable-course set, a weekly hour budget, a
// preferred shift, and optional per-day availability windows. A nil
// Availability map means unrestricted beyond the preferred shift.
type Instructor struct {
	ID             InstructorID
	Name           string
	Teaches        map[CourseID]bool
	WeeklyBudget   int
	PreferredShift Shift
	Availability   map[DayID][]AvailabilityInterval
}

// TeachesCourse reports whether the instructor may teach the given course.
func (in *Instructor) TeachesCourse(c CourseID) bool {
	return in.Teaches[c]
}

// Available reports whether the instructor's availability (when
// specified) contains the given day and hour. An absent day entry means
// the instructor is out that day; a nil Availability map means
// unrestricted beyond the preferred shift.
func (in *Instructor) Available(day DayID, hour int) bool {
	if in.Availability == nil {
		return true
	}
	windows, ok := in.Availability[day]
	if !ok {
		return false
	}
	for _, w := range windows {
		if hour >= w.StartHour && hour < w.EndHour {
			return true
		}
	}
	return false
}

// DemandUnit is the remaining-hours triple (group, course, hours
// remaining) derived from the input. HoursRemaining is mutated during
// search: decremented on commit, incremented on undo.
type DemandUnit struct {
	Group          GroupID
	Course         CourseID
	HoursRemaining int
}

// Placement is a committed assignment of (group, course, instructor, slot).
type Placement struct {
	Group      GroupID
	Course     CourseID
	Instructor InstructorID
	Slot       Slot
}

// Model is the fully built, immutable domain built from the parsed
// input: groups, courses, instructors indexed by their dense ids, plus
// the initial demand decomposition.
type Model struct {
	Groups      []Group
	Courses     []Course
	Instructors []Instructor

	// InitialDemand is the full decomposition of every course into one
	// demand unit per enrolled group, seeded with the course's weekly
	// hours. The search copies it; the model's slice is never mutated.
	InitialDemand []DemandUnit
}

// Group returns the group with the given id.
func (m *Model) Group(id GroupID) *Group { return &m.Groups[id] }

// Course returns the course with the given id.
func (m *Model) Course(id CourseID) *Course { return &m.Courses[id] }

// Instructor returns the instructor with the given id.
func (m *Model) Instructor(id InstructorID) *Instructor { return &m.Instructors[id] }

// EligibleInstructors returns, in declaration order, every instructor
// that may teach the given course. The order is stable: nothing in the
// search, including undo, ever reorders it.
func (m *Model) EligibleInstructors(course CourseID) []InstructorID {
	var out []InstructorID
	for i := range m.Instructors {
		if m.Instructors[i].TeachesCourse(course) {
			out = append(out, m.Instructors[i].ID)
		}
	}
	return out
}

// BuildInitialDemand decomposes every course into one demand unit per
// group in its Groups list, each seeded with the course's weekly hours.
func BuildInitialDemand(courses []Course) []DemandUnit {
	var demand []DemandUnit
	for _, c := range courses {
		for _, g := range c.Groups {
			demand = append(demand, DemandUnit{Group: g, Course: c.ID, HoursRemaining: c.WeeklyHours})
		}
	}
	return demand
}
