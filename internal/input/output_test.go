package input

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/russross/timetable-solver/internal/domain"
	"github.com/russross/timetable-solver/internal/stats"
)

func outputModel() *domain.Model {
	groups := []domain.Group{{ID: 0, Name: "G1", Cohort: 1, Shift: domain.Morning}}
	courses := []domain.Course{{ID: 0, Name: "C1", Cohort: 1, WeeklyHours: 1, Groups: []domain.GroupID{0}}}
	instructors := []domain.Instructor{{ID: 0, Name: "I1", Teaches: map[domain.CourseID]bool{0: true}, WeeklyBudget: 5, PreferredShift: domain.Both}}
	m := &domain.Model{Groups: groups, Courses: courses, Instructors: instructors}
	m.InitialDemand = domain.BuildInitialDemand(courses)
	return m
}

func TestBuildOutputScheduleShape(t *testing.T) {
	m := outputModel()
	placements := []domain.Placement{
		{Group: 0, Course: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 7, Shift: domain.Morning}},
	}

	out := BuildOutput(m, true, placements, stats.Statistics{})

	require.True(t, out.OK)
	require.Contains(t, out.Schedule, "G1")
	monday := out.Schedule["G1"]["Monday"]
	require.Len(t, monday, 7, "one entry per shift hour band")

	placed := monday["07:00-08:00"]
	require.NotNil(t, placed)
	require.Equal(t, "C1", placed.Course)
	require.Equal(t, "I1", placed.Instructor)

	require.Nil(t, monday["08:00-09:00"], "empty slots serialize as null")
}

func TestBuildOutputInfeasibleOmitsSchedule(t *testing.T) {
	m := outputModel()
	out := BuildOutput(m, false, nil, stats.Statistics{})
	require.False(t, out.OK)
	require.Nil(t, out.Schedule)
}

func TestWriteOutputEmitsSpecShape(t *testing.T) {
	m := outputModel()
	placements := []domain.Placement{
		{Group: 0, Course: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 7, Shift: domain.Morning}},
	}
	out := BuildOutput(m, true, placements, stats.Statistics{NodesExplored: 2, SolutionLength: 2})

	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, out))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, true, decoded["ok"])
	require.Contains(t, decoded, "schedule")
	statsRec, ok := decoded["statistics"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, float64(2), statsRec["nodes_explored"])
	require.Equal(t, float64(2), statsRec["solution_length"])
}
