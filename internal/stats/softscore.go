package stats

import (
	"fmt"
	"sort"

	"github.com/russross/timetable-solver/internal/domain"
)

// SoftProblem is one reported soft-constraint observation: a schedule
// that is valid under every hard constraint can still be lopsided in
// ways worth flagging to a human reviewer.
type SoftProblem struct {
	Message string
	Badness int
}

// SoftScore is a diagnostic-only quality report over a finished
// schedule. It is never part of the search objective: nothing in
// internal/engine or internal/heuristics ever reads this type. It is
// computed once, after Solve returns, purely for the caller to display
// alongside the statistics report.
//
// The per-day formula: -10 for each gap between non-adjacent classes
// on a day, -5 once for a day with more than 4 classes, +5 for each
// pair of back-to-back classes. Groups and instructors are scored with
// the same formula; a lopsided instructor week is the same kind of
// quality defect as a lopsided group week.
type SoftScore struct {
	TotalBadness int
	Problems     []SoftProblem
}

// DeriveSoftScore runs calcular_score_calidad's per-day gap/overload/
// consecutive-class formula over every group's and instructor's
// placements, and reports each one whose total score is negative as a
// soft-constraint problem, ranked by badness (the score's magnitude).
func DeriveSoftScore(m *domain.Model, schedule []domain.Placement) SoftScore {
	var score SoftScore

	instructorDays := make(map[domain.InstructorID]map[domain.DayID][]int)
	groupDays := make(map[domain.GroupID]map[domain.DayID][]int)
	for _, p := range schedule {
		if instructorDays[p.Instructor] == nil {
			instructorDays[p.Instructor] = make(map[domain.DayID][]int)
		}
		instructorDays[p.Instructor][p.Slot.Day] = append(instructorDays[p.Instructor][p.Slot.Day], p.Slot.Hour)

		if groupDays[p.Group] == nil {
			groupDays[p.Group] = make(map[domain.DayID][]int)
		}
		groupDays[p.Group][p.Slot.Day] = append(groupDays[p.Group][p.Slot.Day], p.Slot.Hour)
	}

	for i := range m.Groups {
		id := m.Groups[i].ID
		if quality := qualityScore(groupDays[id]); quality < 0 {
			badness := -quality
			score.Problems = append(score.Problems, SoftProblem{
				Message: fmt.Sprintf("group schedule quality: %s has gaps or overloaded days (badness %d)",
					m.Groups[i].Name, badness),
				Badness: badness,
			})
			score.TotalBadness += badness
		}
	}

	for i := range m.Instructors {
		id := m.Instructors[i].ID
		if quality := qualityScore(instructorDays[id]); quality < 0 {
			badness := -quality
			score.Problems = append(score.Problems, SoftProblem{
				Message: fmt.Sprintf("instructor schedule quality: %s has gaps or overloaded days (badness %d)",
					m.Instructors[i].Name, badness),
				Badness: badness,
			})
			score.TotalBadness += badness
		}
	}

	sort.Slice(score.Problems, func(a, b int) bool {
		return score.Problems[a].Badness > score.Problems[b].Badness
	})

	return score
}

// qualityScore scores one entity's per-day occupied hours: for each
// day, classes with more than an hour between them are a gap (-10
// each), more than 4 classes in a day is an overload (-5, once),
// and each pair of back-to-back hours is a bonus (+5 each).
func qualityScore(byDay map[domain.DayID][]int) int {
	score := 0
	for _, hours := range byDay {
		if len(hours) == 0 {
			continue
		}
		sorted := append([]int(nil), hours...)
		sort.Ints(sorted)

		gaps, consecutive := 0, 0
		for i := 0; i < len(sorted)-1; i++ {
			switch diff := sorted[i+1] - sorted[i]; {
			case diff > 1:
				gaps++
			case diff == 1:
				consecutive++
			}
		}
		score -= gaps * 10
		if len(sorted) > 4 {
			score -= 5
		}
		score += consecutive * 5
	}
	return score
}
