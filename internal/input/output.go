package input

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/russross/timetable-solver/internal/domain"
	"github.com/russross/timetable-solver/internal/stats"
)

// cellEntry is the filled half of a schedule cell; an empty cell
// serializes as JSON null.
type cellEntry struct {
	Course     string `json:"course"`
	Instructor string `json:"instructor"`
}

// Output is the solver-output record: ok, the nested
// group/day/hour schedule, and the statistics block. Every shift slot
// of every group appears in Schedule, empty ones as null.
type Output struct {
	OK         bool                                        `json:"ok"`
	Schedule   map[string]map[string]map[string]*cellEntry `json:"schedule,omitempty"`
	Statistics outputStats                                 `json:"statistics"`
}

type outputStats struct {
	NodesExplored   int            `json:"nodes_explored"`
	Backtracks      int            `json:"backtracks"`
	MaxDepth        int            `json:"max_depth"`
	TimeSeconds     float64        `json:"time_seconds"`
	NodesPerSecond  float64        `json:"nodes_per_second"`
	BranchingFactor float64        `json:"branching_factor"`
	SuccessRate     float64        `json:"success_rate"`
	SolutionLength  int            `json:"solution_length"`
	NodesByKind     map[string]int `json:"nodes_by_kind"`
}

// BuildOutput assembles the solver-output record from the model, the
// engine's placements, and the derived statistics.
func BuildOutput(m *domain.Model, ok bool, placements []domain.Placement, st stats.Statistics) Output {
	out := Output{OK: ok, Statistics: outputStats(st)}
	if !ok {
		return out
	}

	out.Schedule = make(map[string]map[string]map[string]*cellEntry, len(m.Groups))
	for i := range m.Groups {
		grp := &m.Groups[i]
		byDay := make(map[string]map[string]*cellEntry)
		for _, slot := range domain.Slots(grp.Shift) {
			day := domain.Days[slot.Day]
			if byDay[day] == nil {
				byDay[day] = make(map[string]*cellEntry)
			}
			byDay[day][slotLabel(slot)] = nil
		}
		out.Schedule[grp.Name] = byDay
	}

	for _, p := range placements {
		grp := m.Group(p.Group)
		day := domain.Days[p.Slot.Day]
		out.Schedule[grp.Name][day][slotLabel(p.Slot)] = &cellEntry{
			Course:     m.Course(p.Course).Name,
			Instructor: m.Instructor(p.Instructor).Name,
		}
	}

	return out
}

func slotLabel(s domain.Slot) string {
	return fmt.Sprintf("%02d:00-%02d:00", s.Hour, s.Hour+1)
}

// WriteOutput emits the solver-output record as indented JSON.
func WriteOutput(w io.Writer, out Output) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
