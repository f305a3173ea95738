package tree

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTreeHasSingleExploringRoot(t *testing.T) {
	tr := New()
	require.Len(t, tr.Nodes, 1)
	require.Equal(t, Root, tr.Nodes[0].Kind)
	require.Equal(t, Exploring, tr.Nodes[0].Status)
	require.Equal(t, -1, tr.Nodes[0].ParentID)
	require.NotEmpty(t, tr.RunID)
}

func TestAddLinksParentAndChild(t *testing.T) {
	tr := New()
	id := tr.Add(Decision, Payload{}, 0)
	require.Equal(t, 1, id)
	require.Equal(t, 0, tr.Nodes[0].Depth, "root depth stays 0")
	require.Contains(t, tr.Nodes[0].Children, id)
	require.Equal(t, 1, tr.Nodes[id].Depth)
	require.Equal(t, 0, tr.Nodes[id].ParentID)
}

// Tree closure: every non-root node's parent's child list contains it;
// every success node has a success parent up to the root; no node is
// both success and failure.
func TestTreeClosure(t *testing.T) {
	tr := New()
	a := tr.Add(Decision, Payload{}, 0)
	b := tr.Add(Decision, Payload{}, a)
	c := tr.Add(Conflict, Payload{}, a)

	tr.MarkFailure(c)
	tr.MarkSuccess(b)

	for _, n := range tr.Nodes {
		if n.ParentID < 0 {
			continue
		}
		require.Contains(t, tr.Nodes[n.ParentID].Children, n.ID, "node %d must appear in its parent's child list", n.ID)
	}

	// success propagated from b up through a to the root
	require.Equal(t, Success, tr.Nodes[b].Status)
	require.Equal(t, Success, tr.Nodes[a].Status)
	require.Equal(t, Success, tr.Nodes[0].Status)
	require.Equal(t, Failure, tr.Nodes[c].Status)

	for _, n := range tr.Nodes {
		require.False(t, n.Status == Success && n.Status == Failure, "status is a single value, not both")
	}
}

func TestSolutionPathIsNilWithoutSuccess(t *testing.T) {
	tr := New()
	require.Nil(t, tr.SolutionPath())
}

func TestSolutionPathUniqueRootToLeaf(t *testing.T) {
	tr := New()
	a := tr.Add(Decision, Payload{}, 0)
	b := tr.Add(Decision, Payload{}, a)
	tr.Add(Conflict, Payload{}, a) // sibling, never marked success
	tr.MarkSuccess(b)

	path := tr.SolutionPath()
	require.Equal(t, []int{0, a, b}, path)
}

func TestStatsCountsByKindAndStatus(t *testing.T) {
	tr := New()
	a := tr.Add(Decision, Payload{}, 0)
	tr.Add(Conflict, Payload{}, 0)
	tr.MarkFailure(a)

	st := tr.Stats()
	require.Equal(t, 3, st.Total)
	require.Equal(t, 1, st.ByKind["root"])
	require.Equal(t, 1, st.ByKind["decision"])
	require.Equal(t, 1, st.ByKind["conflict"])
	require.Equal(t, 2, st.ByStatus["failure"], "the failed decision plus the conflict, which is born failed")
	require.Equal(t, 1, st.MaxDepth)
	require.Equal(t, 2.0, st.BranchingFactor, "root has 2 children, the only node with children")
}

func TestMarshalJSONExportShape(t *testing.T) {
	tr := New()
	tr.Add(Decision, Payload{Group: 1, Course: 2, Instructor: 3}, 0)

	data, err := tr.MarshalJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, float64(0), decoded["root"])
	require.Contains(t, decoded, "nodes")
	require.Contains(t, decoded, "run_id")
}

// Generated sweep: closure holds for arbitrary add/mark sequences, not
// just the hand-built shapes above.
func TestTreeClosureGenerated(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		r := rand.New(rand.NewSource(seed))
		tr := New()

		var decisions []int
		for i, n := 0, 5+r.Intn(40); i < n; i++ {
			parent := 0
			if len(decisions) > 0 && r.Intn(3) > 0 {
				parent = decisions[r.Intn(len(decisions))]
			}
			if r.Intn(3) == 0 {
				tr.Add(Conflict, Payload{}, parent)
				continue
			}
			id := tr.Add(Decision, Payload{}, parent)
			decisions = append(decisions, id)
			if r.Intn(4) == 0 {
				tr.MarkFailure(id)
			}
		}
		if len(decisions) > 0 && r.Intn(2) == 0 {
			tr.MarkSuccess(decisions[r.Intn(len(decisions))])
		}

		for _, n := range tr.Nodes {
			if n.ParentID < 0 {
				continue
			}
			require.Contains(t, tr.Nodes[n.ParentID].Children, n.ID,
				"seed %d: node %d missing from its parent's child list", seed, n.ID)
			if n.Status == Success {
				require.Equal(t, Success, tr.Nodes[n.ParentID].Status,
					"seed %d: success node %d under a non-success parent", seed, n.ID)
			}
		}
		for _, child := range tr.Nodes[0].Children {
			require.Equal(t, 0, tr.Nodes[child].ParentID)
		}
	}
}
