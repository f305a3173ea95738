// Package input decodes and validates the JSON solver-input record
// into the immutable domain.Model the engine consumes. Every malformed
// or internally inconsistent record is reported here, as an Error with
// a JSON field path, before the engine is ever invoked; the engine
// never sees a bad dataset.
package input

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/russross/timetable-solver/internal/domain"
)

// Code classifies an input validation failure. All are reported
// before the engine runs; the engine never sees a Code.
type Code int

const (
	MalformedJSON Code = iota
	UnknownShift
	DuplicateName
	InvalidWeeklyHours
	InvalidWeeklyBudget
	UnknownCourseReference
	MalformedHour
	NonZeroMinutes
	UnknownDay
	EmptyAvailabilityInterval
	EmptyName
)

// Error is a malformed or internally inconsistent dataset, located by
// a JSON field path.
type Error struct {
	Code Code
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Path
}

func (e *Error) Unwrap() error { return e.Err }

func fail(code Code, path string, format string, args ...any) *Error {
	return &Error{Code: code, Path: path, Err: fmt.Errorf(format, args...)}
}

// rawGroup/rawCourse/rawInstructor/rawInput mirror the JSON wire shape
// of the solver input record exactly.
type rawGroup struct {
	Name   string `json:"name"`
	Cohort int    `json:"cohort"`
	Shift  string `json:"shift"`
}

type rawCourse struct {
	Name        string `json:"name"`
	Cohort      int    `json:"cohort"`
	WeeklyHours int    `json:"weekly_hours"`
}

type rawInterval [2]string

type rawInstructor struct {
	Name           string                   `json:"name"`
	Teaches        []string                 `json:"teaches"`
	WeeklyBudget   int                      `json:"weekly_budget"`
	PreferredShift string                   `json:"preferred_shift"`
	Availability   map[string][]rawInterval `json:"availability,omitempty"`
}

type rawInput struct {
	Groups      []rawGroup      `json:"groups"`
	Courses     []rawCourse     `json:"courses"`
	Instructors []rawInstructor `json:"instructors"`
}

var dayIndex = func() map[string]domain.DayID {
	m := make(map[string]domain.DayID, len(domain.Days))
	for i, d := range domain.Days {
		m[d] = domain.DayID(i)
	}
	return m
}()

// Decode reads the JSON solver-input record and validates it into a
// domain.Model, or returns an *Error describing the first problem
// found.
func Decode(r io.Reader) (*domain.Model, error) {
	var raw rawInput
	dec := json.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fail(MalformedJSON, "$", "decoding JSON: %w", err)
	}
	return build(&raw)
}

func build(raw *rawInput) (*domain.Model, error) {
	groups, groupIndex, err := buildGroups(raw.Groups)
	if err != nil {
		return nil, err
	}

	courses, courseIndex, err := buildCourses(raw.Courses, groups, groupIndex)
	if err != nil {
		return nil, err
	}

	instructors, err := buildInstructors(raw.Instructors, courseIndex)
	if err != nil {
		return nil, err
	}

	m := &domain.Model{
		Groups:      groups,
		Courses:     courses,
		Instructors: instructors,
	}
	m.InitialDemand = domain.BuildInitialDemand(courses)
	return m, nil
}

func buildGroups(raw []rawGroup) ([]domain.Group, map[string]domain.GroupID, error) {
	groups := make([]domain.Group, 0, len(raw))
	index := make(map[string]domain.GroupID, len(raw))
	for i, rg := range raw {
		path := fmt.Sprintf("groups[%d]", i)
		if rg.Name == "" {
			return nil, nil, fail(EmptyName, path, "group name must not be empty")
		}
		if _, dup := index[rg.Name]; dup {
			return nil, nil, fail(DuplicateName, path, "duplicate group name %q", rg.Name)
		}
		shift, err := domain.ParseShift(rg.Shift)
		if err != nil || shift == domain.Both {
			return nil, nil, fail(UnknownShift, path+".shift", "group shift must be Morning or Evening, found %q", rg.Shift)
		}
		id := domain.GroupID(len(groups))
		groups = append(groups, domain.Group{ID: id, Name: rg.Name, Cohort: rg.Cohort, Shift: shift})
		index[rg.Name] = id
	}
	return groups, index, nil
}

func buildCourses(raw []rawCourse, groups []domain.Group, groupIndex map[string]domain.GroupID) ([]domain.Course, map[string]domain.CourseID, error) {
	// groups-per-course is derived by cohort match: course C at cohort K
	// is taken by every group at cohort K.
	groupsByCohort := make(map[int][]domain.GroupID)
	for _, g := range groups {
		groupsByCohort[g.Cohort] = append(groupsByCohort[g.Cohort], g.ID)
	}
	for cohort := range groupsByCohort {
		sort.Slice(groupsByCohort[cohort], func(a, b int) bool {
			return groupsByCohort[cohort][a] < groupsByCohort[cohort][b]
		})
	}

	courses := make([]domain.Course, 0, len(raw))
	index := make(map[string]domain.CourseID, len(raw))
	for i, rc := range raw {
		path := fmt.Sprintf("courses[%d]", i)
		key := fmt.Sprintf("%d/%s", rc.Cohort, rc.Name)
		if rc.Name == "" {
			return nil, nil, fail(EmptyName, path, "course name must not be empty")
		}
		if _, dup := index[key]; dup {
			return nil, nil, fail(DuplicateName, path, "duplicate course (cohort, name) pair %d/%q", rc.Cohort, rc.Name)
		}
		if rc.WeeklyHours < 1 {
			return nil, nil, fail(InvalidWeeklyHours, path+".weekly_hours", "weekly_hours must be >= 1, found %d", rc.WeeklyHours)
		}
		members := groupsByCohort[rc.Cohort]
		if len(members) == 0 {
			return nil, nil, fail(UnknownCourseReference, path+".cohort", "no group belongs to cohort %d", rc.Cohort)
		}
		id := domain.CourseID(len(courses))
		courses = append(courses, domain.Course{
			ID:          id,
			Name:        rc.Name,
			Cohort:      rc.Cohort,
			WeeklyHours: rc.WeeklyHours,
			Groups:      append([]domain.GroupID(nil), members...),
		})
		index[key] = id
	}
	return courses, index, nil
}

func buildInstructors(raw []rawInstructor, courseIndex map[string]domain.CourseID) ([]domain.Instructor, error) {
	instructors := make([]domain.Instructor, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, ri := range raw {
		path := fmt.Sprintf("instructors[%d]", i)
		if ri.Name == "" {
			return nil, fail(EmptyName, path, "instructor name must not be empty")
		}
		if seen[ri.Name] {
			return nil, fail(DuplicateName, path, "duplicate instructor name %q", ri.Name)
		}
		seen[ri.Name] = true

		if ri.WeeklyBudget < 0 {
			return nil, fail(InvalidWeeklyBudget, path+".weekly_budget", "weekly_budget must be >= 0, found %d", ri.WeeklyBudget)
		}

		shift, err := domain.ParseShift(ri.PreferredShift)
		if err != nil {
			return nil, fail(UnknownShift, path+".preferred_shift", "unknown preferred_shift %q", ri.PreferredShift)
		}

		teaches := make(map[domain.CourseID]bool, len(ri.Teaches))
		for j, cname := range ri.Teaches {
			// A course name alone is ambiguous across cohorts in the raw
			// input; match any course sharing that name, since
			// instructors are not scoped to a single cohort.
			found := false
			for key, cid := range courseIndex {
				if courseNameOf(key) == cname {
					teaches[cid] = true
					found = true
				}
			}
			if !found {
				return nil, fail(UnknownCourseReference, fmt.Sprintf("%s.teaches[%d]", path, j), "unknown course name %q", cname)
			}
		}

		availability, err := buildAvailability(ri.Availability, path+".availability")
		if err != nil {
			return nil, err
		}

		id := domain.InstructorID(len(instructors))
		instructors = append(instructors, domain.Instructor{
			ID:             id,
			Name:           ri.Name,
			Teaches:        teaches,
			WeeklyBudget:   ri.WeeklyBudget,
			PreferredShift: shift,
			Availability:   availability,
		})
	}
	return instructors, nil
}

func courseNameOf(key string) string {
	for i := 0; i < len(key); i++ {
		if key[i] == '/' {
			return key[i+1:]
		}
	}
	return key
}

func buildAvailability(raw map[string][]rawInterval, path string) (map[domain.DayID][]domain.AvailabilityInterval, error) {
	if raw == nil {
		return nil, nil
	}
	out := make(map[domain.DayID][]domain.AvailabilityInterval, len(raw))
	for day, intervals := range raw {
		dayID, ok := dayIndex[day]
		if !ok {
			return nil, fail(UnknownDay, path+"."+day, "unknown day %q", day)
		}
		if len(intervals) == 0 {
			return nil, fail(EmptyAvailabilityInterval, path+"."+day, "availability entry for %q must list at least one interval", day)
		}
		parsed := make([]domain.AvailabilityInterval, 0, len(intervals))
		for i, iv := range intervals {
			startHour, startMin, err := parseHHMM(iv[0])
			if err != nil {
				return nil, fail(MalformedHour, fmt.Sprintf("%s.%s[%d][0]", path, day, i), "%w", err)
			}
			endHour, endMin, err := parseHHMM(iv[1])
			if err != nil {
				return nil, fail(MalformedHour, fmt.Sprintf("%s.%s[%d][1]", path, day, i), "%w", err)
			}
			// Only the hour component is meaningful downstream, so a
			// nonzero minute would be silently rounded away; flag it
			// here instead.
			if startMin != 0 || endMin != 0 {
				return nil, fail(NonZeroMinutes, fmt.Sprintf("%s.%s[%d]", path, day, i), "availability interval %v has a nonzero minute component", iv)
			}
			if endHour <= startHour {
				return nil, fail(MalformedHour, fmt.Sprintf("%s.%s[%d]", path, day, i), "interval end %q must be after start %q", iv[1], iv[0])
			}
			parsed = append(parsed, domain.AvailabilityInterval{StartHour: startHour, EndHour: endHour})
		}
		out[dayID] = parsed
	}
	return out, nil
}

// parseHHMM parses a 24-hour "HH:MM" string into its hour and minute
// components.
func parseHHMM(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("malformed HH:MM string %q", s)
	}
	hour, err = atoi2(s[0:2])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed hour in %q: %w", s, err)
	}
	minute, err = atoi2(s[3:5])
	if err != nil {
		return 0, 0, fmt.Errorf("malformed minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("out-of-range HH:MM string %q", s)
	}
	return hour, minute, nil
}

func atoi2(s string) (int, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("expected 2 digits, found %q", s)
	}
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("non-digit character in %q", s)
		}
		n = n*10 + int(c-'0')
	}
	return n, nil
}
