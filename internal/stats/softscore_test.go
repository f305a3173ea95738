package stats

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/russross/timetable-solver/internal/domain"
)

func TestDeriveSoftScoreConsecutiveClassesIsClean(t *testing.T) {
	m := &domain.Model{
		Instructors: []domain.Instructor{{ID: 0, Name: "I1"}},
		Groups:      []domain.Group{{ID: 0, Name: "G1"}},
	}
	schedule := []domain.Placement{
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 7}},
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 8}},
	}
	score := DeriveSoftScore(m, schedule)
	require.Equal(t, 0, score.TotalBadness)
	require.Empty(t, score.Problems)
}

func TestDeriveSoftScorePenalizesGapWithinDay(t *testing.T) {
	m := &domain.Model{
		Instructors: []domain.Instructor{{ID: 0, Name: "I1"}},
		Groups:      []domain.Group{{ID: 0, Name: "G1"}},
	}
	schedule := []domain.Placement{
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 7}},
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 9}},
	}
	score := DeriveSoftScore(m, schedule)
	require.Equal(t, 20, score.TotalBadness, "the gap costs 10 for the group and 10 for its instructor")
	require.Len(t, score.Problems, 2, "both the group and its instructor carry the gap")
}

func TestDeriveSoftScoreSingleClassHasNoGap(t *testing.T) {
	m := &domain.Model{
		Instructors: []domain.Instructor{{ID: 0, Name: "I1"}},
		Groups:      []domain.Group{{ID: 0, Name: "G1"}},
	}
	schedule := []domain.Placement{
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 7}},
	}
	score := DeriveSoftScore(m, schedule)
	require.Equal(t, 0, score.TotalBadness)
	require.Empty(t, score.Problems)
}

func TestDeriveSoftScoreOverloadedDayWithGapsIsPenalized(t *testing.T) {
	m := &domain.Model{
		Instructors: []domain.Instructor{{ID: 0, Name: "I1"}},
		Groups:      []domain.Group{{ID: 0, Name: "G1"}},
	}
	schedule := []domain.Placement{
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 7}},
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 9}},
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 11}},
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 13}},
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 15}},
	}
	score := DeriveSoftScore(m, schedule)
	// 4 gaps (-40) plus the >4-classes-in-a-day overload (-5), no
	// consecutive pairs to offset it: -45 for the group, -45 for the
	// instructor.
	require.Equal(t, 90, score.TotalBadness)
	require.Len(t, score.Problems, 2)
}

func TestDeriveSoftScoreSortedByBadnessDescending(t *testing.T) {
	m := &domain.Model{
		Instructors: []domain.Instructor{{ID: 0, Name: "I1"}},
		Groups: []domain.Group{
			{ID: 0, Name: "G1"},
			{ID: 1, Name: "G2"},
		},
	}
	schedule := []domain.Placement{
		// G1: one gap (badness 10)
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 7}},
		{Group: 0, Instructor: 0, Slot: domain.Slot{Day: 0, Hour: 9}},
		// G2: two gaps (badness 20)
		{Group: 1, Instructor: 0, Slot: domain.Slot{Day: 1, Hour: 7}},
		{Group: 1, Instructor: 0, Slot: domain.Slot{Day: 1, Hour: 9}},
		{Group: 1, Instructor: 0, Slot: domain.Slot{Day: 1, Hour: 11}},
	}
	score := DeriveSoftScore(m, schedule)
	require.GreaterOrEqual(t, len(score.Problems), 2)
	require.GreaterOrEqual(t, score.Problems[0].Badness, score.Problems[1].Badness)
}
