package state

import (
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/russross/timetable-solver/internal/domain"
)

func sampleModel() *domain.Model {
	groups := []domain.Group{
		{ID: 0, Name: "G1", Cohort: 1, Shift: domain.Morning},
	}
	courses := []domain.Course{
		{ID: 0, Name: "C1", Cohort: 1, WeeklyHours: 2, Groups: []domain.GroupID{0}},
	}
	instructors := []domain.Instructor{
		{ID: 0, Name: "I1", Teaches: map[domain.CourseID]bool{0: true}, WeeklyBudget: 10, PreferredShift: domain.Both},
	}
	m := &domain.Model{Groups: groups, Courses: courses, Instructors: instructors}
	m.InitialDemand = domain.BuildInitialDemand(courses)
	return m
}

func TestNewStateGridPrePopulated(t *testing.T) {
	s := New(sampleModel())
	require.Len(t, s.Grid[0], 35)
	for _, cell := range s.Grid[0] {
		require.False(t, cell.Occupied)
	}
	require.Len(t, s.Demand, 1)
	require.Equal(t, 2, s.Demand[0].HoursRemaining)
}

func TestCommitDecrementsDemandWithoutRemoving(t *testing.T) {
	s := New(sampleModel())
	slot := domain.Slots(domain.Morning)[0]
	removed := s.Commit(0, 0, 0, slot)
	require.False(t, removed)
	require.Len(t, s.Demand, 1)
	require.Equal(t, 1, s.Demand[0].HoursRemaining)
	require.True(t, s.Grid[0][slot].Occupied)
	require.True(t, s.InstructorOccupancy[0][slot])
	require.Equal(t, 1, s.InstructorHours[0])
}

func TestCommitRemovesDemandAtZero(t *testing.T) {
	s := New(sampleModel())
	slots := domain.Slots(domain.Morning)
	s.Commit(0, 0, 0, slots[0])
	removed := s.Commit(0, 0, 0, slots[1])
	require.True(t, removed)
	require.Empty(t, s.Demand)
}

func TestUndoIsExactInverseOfCommit(t *testing.T) {
	s := New(sampleModel())
	slot := domain.Slots(domain.Morning)[3]

	before := snapshot(s)
	removed := s.Commit(0, 0, 0, slot)
	s.Undo(0, 0, 0, slot, removed)
	after := snapshot(s)

	require.True(t, reflect.DeepEqual(before, after), "state after commit+undo must equal the pre-commit snapshot")
}

func TestUndoReinsertsRemovedDemandUnit(t *testing.T) {
	s := New(sampleModel())
	slots := domain.Slots(domain.Morning)
	s.Commit(0, 0, 0, slots[0])
	removed := s.Commit(0, 0, 0, slots[1])
	require.True(t, removed)
	require.Empty(t, s.Demand)

	s.Undo(0, 0, 0, slots[1], removed)
	require.Len(t, s.Demand, 1)
	require.Equal(t, 1, s.Demand[0].HoursRemaining)
}

func TestCommitOntoOccupiedCellPanics(t *testing.T) {
	s := New(sampleModel())
	slot := domain.Slots(domain.Morning)[0]
	s.Commit(0, 0, 0, slot)
	require.Panics(t, func() {
		s.Commit(0, 0, 0, slot)
	})
}

// snapshot is a deep, comparable copy of the mutable parts of State
// used to verify commit/undo symmetry.
type stateSnapshot struct {
	Grid                map[domain.GroupID]map[domain.Slot]Cell
	InstructorOccupancy map[domain.InstructorID]map[domain.Slot]bool
	InstructorHours     map[domain.InstructorID]int
	Demand              []domain.DemandUnit
}

func snapshot(s *State) stateSnapshot {
	grid := make(map[domain.GroupID]map[domain.Slot]Cell, len(s.Grid))
	for g, cells := range s.Grid {
		cp := make(map[domain.Slot]Cell, len(cells))
		for k, v := range cells {
			cp[k] = v
		}
		grid[g] = cp
	}
	occ := make(map[domain.InstructorID]map[domain.Slot]bool, len(s.InstructorOccupancy))
	for i, slots := range s.InstructorOccupancy {
		cp := make(map[domain.Slot]bool, len(slots))
		for k, v := range slots {
			cp[k] = v
		}
		occ[i] = cp
	}
	hours := make(map[domain.InstructorID]int, len(s.InstructorHours))
	for k, v := range s.InstructorHours {
		hours[k] = v
	}
	demand := append([]domain.DemandUnit(nil), s.Demand...)
	return stateSnapshot{Grid: grid, InstructorOccupancy: occ, InstructorHours: hours, Demand: demand}
}

// Generated sweep: any sequence of valid commits, undone in reverse
// order, restores the state to its pre-sequence snapshot exactly.
func TestCommitUndoSymmetryGenerated(t *testing.T) {
	type op struct {
		group      domain.GroupID
		course     domain.CourseID
		instructor domain.InstructorID
		slot       domain.Slot
		removed    bool
	}

	for seed := int64(0); seed < 50; seed++ {
		r := rand.New(rand.NewSource(seed))

		nGroups := 1 + r.Intn(2)
		groups := make([]domain.Group, nGroups)
		for i := range groups {
			groups[i] = domain.Group{ID: domain.GroupID(i), Name: fmt.Sprintf("G%d", i+1), Cohort: 1, Shift: domain.Morning}
		}
		members := make([]domain.GroupID, nGroups)
		for i := range members {
			members[i] = domain.GroupID(i)
		}
		courses := []domain.Course{{ID: 0, Name: "C1", Cohort: 1, WeeklyHours: 1 + r.Intn(3), Groups: members}}
		instructors := []domain.Instructor{{ID: 0, Name: "I1", Teaches: map[domain.CourseID]bool{0: true}, WeeklyBudget: 40, PreferredShift: domain.Both}}
		m := &domain.Model{Groups: groups, Courses: courses, Instructors: instructors}
		m.InitialDemand = domain.BuildInitialDemand(courses)

		s := New(m)
		before := snapshot(s)

		slots := domain.Slots(domain.Morning)
		var ops []op
		for len(s.Demand) > 0 && len(ops) < 5 {
			unit := s.Demand[r.Intn(len(s.Demand))]
			slot := slots[r.Intn(len(slots))]
			if s.Grid[unit.Group][slot].Occupied || s.InstructorOccupancy[0][slot] {
				continue
			}
			removed := s.Commit(unit.Group, unit.Course, 0, slot)
			ops = append(ops, op{unit.Group, unit.Course, 0, slot, removed})
		}

		for i := len(ops) - 1; i >= 0; i-- {
			o := ops[i]
			s.Undo(o.group, o.course, o.instructor, o.slot, o.removed)
		}

		after := snapshot(s)
		require.True(t, reflect.DeepEqual(normalize(before), normalize(after)),
			"seed %d: state after %d commits undone in reverse must equal the snapshot", seed, len(ops))
	}
}

// normalize sorts the demand slice by (group, course) so snapshots
// compare by content; undo reinserts removed units at the tail, and
// Demand order carries no meaning.
func normalize(s stateSnapshot) stateSnapshot {
	demand := append([]domain.DemandUnit(nil), s.Demand...)
	for i := 1; i < len(demand); i++ {
		for j := i; j > 0; j-- {
			a, b := demand[j-1], demand[j]
			if a.Group < b.Group || (a.Group == b.Group && a.Course <= b.Course) {
				break
			}
			demand[j-1], demand[j] = b, a
		}
	}
	s.Demand = demand
	return s
}
