// Package tree is the append-only decision-tree log the engine writes
// as it searches: every attempted, committed, or rejected placement
// becomes a node. Parent/child relations use dense integer indices, not
// pointers, so the whole structure is a flat, indexable slice that
// stays cheap past a million nodes.
package tree

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/russross/timetable-solver/internal/domain"
)

// Kind names the three node categories.
type Kind int

const (
	Root Kind = iota
	Decision
	Conflict
)

func (k Kind) String() string {
	switch k {
	case Root:
		return "root"
	case Decision:
		return "decision"
	case Conflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Status tracks a node's outcome. Set at most twice: exploring ->
// success|failure, and success may then propagate to ancestors.
type Status int

const (
	Exploring Status = iota
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Exploring:
		return "exploring"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// Payload carries the kind-specific data for a decision or conflict
// node. Group/Course/Instructor/Slot/HoursRemaining apply to both kinds;
// Reason is set only on conflict nodes.
type Payload struct {
	Group          domain.GroupID
	Course         domain.CourseID
	Instructor     domain.InstructorID
	Slot           domain.Slot
	HoursRemaining int
	Reason         string
}

// Node is one append-only tree record.
type Node struct {
	ID       int
	Kind     Kind
	ParentID int // -1 for the root
	Children []int
	Depth    int
	Status   Status
	Payload  Payload
}

// Tree is the flat, id-indexed decision log for a single solve.
type Tree struct {
	RunID string
	Nodes []Node
}

// New creates a tree with a single exploring root node and a fresh
// run identifier, exported as run_id in the tree JSON. The text
// statistics report does not include it.
func New() *Tree {
	t := &Tree{RunID: uuid.NewString()}
	t.Nodes = append(t.Nodes, Node{ID: 0, ParentID: -1, Kind: Root, Status: Exploring})
	return t
}

// Add appends a new node as a child of parent and returns its id.
// Decision nodes start exploring; a conflict node is a settled
// rejection, so it is born with failure status and never revisited.
func (t *Tree) Add(kind Kind, payload Payload, parent int) int {
	id := len(t.Nodes)
	depth := t.Nodes[parent].Depth + 1
	status := Exploring
	if kind == Conflict {
		status = Failure
	}
	t.Nodes = append(t.Nodes, Node{
		ID:       id,
		Kind:     kind,
		ParentID: parent,
		Depth:    depth,
		Status:   status,
		Payload:  payload,
	})
	t.Nodes[parent].Children = append(t.Nodes[parent].Children, id)
	return id
}

// MarkFailure sets a node's status to failure.
func (t *Tree) MarkFailure(id int) {
	t.Nodes[id].Status = Failure
}

// MarkSuccess sets a node's status to success and propagates success up
// the parent chain to the root.
func (t *Tree) MarkSuccess(id int) {
	for id >= 0 {
		t.Nodes[id].Status = Success
		id = t.Nodes[id].ParentID
	}
}

// SolutionPath returns the ids on the root-to-leaf path of success
// nodes, which is unique when the engine returned a solution.
func (t *Tree) SolutionPath() []int {
	if len(t.Nodes) == 0 || t.Nodes[0].Status != Success {
		return nil
	}
	path := []int{0}
	cur := 0
	for {
		next := -1
		for _, child := range t.Nodes[cur].Children {
			if t.Nodes[child].Status == Success {
				next = child
				break
			}
		}
		if next == -1 {
			break
		}
		path = append(path, next)
		cur = next
	}
	return path
}

// Stats computes aggregate totals over the tree: counts by kind, counts
// by status, max depth, and branching factor (total children / nodes
// with at least one child).
type Stats struct {
	Total           int
	ByKind          map[string]int
	ByStatus        map[string]int
	MaxDepth        int
	BranchingFactor float64
}

func (t *Tree) Stats() Stats {
	st := Stats{
		ByKind:   make(map[string]int),
		ByStatus: make(map[string]int),
	}
	st.Total = len(t.Nodes)

	totalChildren, nodesWithChildren := 0, 0
	for _, n := range t.Nodes {
		st.ByKind[n.Kind.String()]++
		st.ByStatus[n.Status.String()]++
		if n.Depth > st.MaxDepth {
			st.MaxDepth = n.Depth
		}
		if len(n.Children) > 0 {
			totalChildren += len(n.Children)
			nodesWithChildren++
		}
	}
	if nodesWithChildren > 0 {
		st.BranchingFactor = float64(totalChildren) / float64(nodesWithChildren)
	}
	return st
}

// export is the portable JSON shape: root id plus a map from id to node
// record.
type export struct {
	RunID string         `json:"run_id"`
	Root  int            `json:"root"`
	Nodes map[int]jsNode `json:"nodes"`
}

type jsNode struct {
	Kind     string    `json:"kind"`
	ParentID *int      `json:"parent_id,omitempty"`
	Children []int     `json:"children,omitempty"`
	Depth    int       `json:"depth"`
	Status   string    `json:"status"`
	Payload  jsPayload `json:"payload"`
}

type jsPayload struct {
	Group          int    `json:"group"`
	Course         int    `json:"course"`
	Instructor     int    `json:"instructor,omitempty"`
	Slot           string `json:"slot,omitempty"`
	HoursRemaining int    `json:"hours_remaining,omitempty"`
	Reason         string `json:"reason,omitempty"`
}

// MarshalJSON renders the tree as the portable export structure.
func (t *Tree) MarshalJSON() ([]byte, error) {
	e := export{RunID: t.RunID, Root: 0, Nodes: make(map[int]jsNode, len(t.Nodes))}
	for _, n := range t.Nodes {
		var parent *int
		if n.ParentID >= 0 {
			p := n.ParentID
			parent = &p
		}
		var slot string
		if n.Kind != Root {
			slot = n.Payload.Slot.Key()
		}
		e.Nodes[n.ID] = jsNode{
			Kind:     n.Kind.String(),
			ParentID: parent,
			Children: n.Children,
			Depth:    n.Depth,
			Status:   n.Status.String(),
			Payload: jsPayload{
				Group:          int(n.Payload.Group),
				Course:         int(n.Payload.Course),
				Instructor:     int(n.Payload.Instructor),
				Slot:           slot,
				HoursRemaining: n.Payload.HoursRemaining,
				Reason:         n.Payload.Reason,
			},
		}
	}
	return json.Marshal(e)
}
