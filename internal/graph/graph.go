// Package graph builds the static conflict graph over (group, course)
// demand nodes. Within the search, the graph is used only by the
// heuristics package's degree tiebreak; it is never consulted as a
// hard-constraint gate. The queries in analysis.go are reporting-only.
package graph

import "github.com/russross/timetable-solver/internal/domain"

// Node is a (group, course) identity. Cohort is carried for reporting
// only; node identity is (Group, Course).
type Node struct {
	Group  domain.GroupID
	Course domain.CourseID
	Cohort int
}

// Graph is the undirected conflict graph: symmetric adjacency over the
// node set, built once and never mutated during search.
type Graph struct {
	Nodes     []Node
	nodeIndex map[Node]int
	adjacency map[int]map[int]bool
}

// New builds an empty graph.
func New() *Graph {
	return &Graph{
		nodeIndex: make(map[Node]int),
		adjacency: make(map[int]map[int]bool),
	}
}

func (g *Graph) addNode(n Node) int {
	if idx, ok := g.nodeIndex[n]; ok {
		return idx
	}
	idx := len(g.Nodes)
	g.Nodes = append(g.Nodes, n)
	g.nodeIndex[n] = idx
	g.adjacency[idx] = make(map[int]bool)
	return idx
}

func (g *Graph) addEdge(a, b int) {
	if a == b {
		return
	}
	g.adjacency[a][b] = true
	g.adjacency[b][a] = true
}

// Index returns the dense index of a node, and whether it exists.
func (g *Graph) Index(n Node) (int, bool) {
	idx, ok := g.nodeIndex[n]
	return idx, ok
}

// Neighbors returns the adjacency set for the node at the given index.
func (g *Graph) Neighbors(idx int) map[int]bool {
	return g.adjacency[idx]
}

// Degree returns the neighbor count for the node at the given index.
func (g *Graph) Degree(idx int) int {
	return len(g.adjacency[idx])
}

// Build constructs the node set and edges from the domain model:
//
//  1. instructors-by-course: course id -> set of instructor ids who
//     declare that course.
//  2. one node per (group, course) pair (course.Groups).
//  3. an edge between every pair of nodes that share a group-name
//     (type G) or share at least one eligible instructor (type P).
func Build(m *domain.Model) *Graph {
	g := New()

	instructorsByCourse := make(map[domain.CourseID]map[domain.InstructorID]bool)
	for i := range m.Instructors {
		in := &m.Instructors[i]
		for course := range in.Teaches {
			if instructorsByCourse[course] == nil {
				instructorsByCourse[course] = make(map[domain.InstructorID]bool)
			}
			instructorsByCourse[course][in.ID] = true
		}
	}

	for _, c := range m.Courses {
		for _, grp := range c.Groups {
			g.addNode(Node{Group: grp, Course: c.ID, Cohort: c.Cohort})
		}
	}

	for i := 0; i < len(g.Nodes); i++ {
		for j := i + 1; j < len(g.Nodes); j++ {
			n1, n2 := g.Nodes[i], g.Nodes[j]
			if n1.Group == n2.Group || sharesInstructor(instructorsByCourse, n1.Course, n2.Course) {
				g.addEdge(i, j)
			}
		}
	}

	return g
}

func sharesInstructor(byCourse map[domain.CourseID]map[domain.InstructorID]bool, c1, c2 domain.CourseID) bool {
	if c1 == c2 {
		// a course with no eligible instructors shares nobody, not
		// even with itself
		return len(byCourse[c1]) > 0
	}
	a, b := byCourse[c1], byCourse[c2]
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	// iterate the smaller set
	if len(a) > len(b) {
		a, b = b, a
	}
	for ins := range a {
		if b[ins] {
			return true
		}
	}
	return false
}

// Stats summarizes the graph's size and connectivity.
type Stats struct {
	Nodes     int
	Edges     int
	AvgDegree float64
	MaxDegree int
	MinDegree int
	Density   float64
}

// Stats computes node count, edge count (each undirected edge counted
// once), average/max/min degree, and density = 2E / (N(N-1)).
func (g *Graph) Stats() Stats {
	n := len(g.Nodes)
	if n == 0 {
		return Stats{}
	}
	edges := 0
	maxDeg, minDeg := -1, -1
	sumDeg := 0
	for i := 0; i < n; i++ {
		d := g.Degree(i)
		edges += d
		sumDeg += d
		if maxDeg < 0 || d > maxDeg {
			maxDeg = d
		}
		if minDeg < 0 || d < minDeg {
			minDeg = d
		}
	}
	edges /= 2

	var density float64
	if n > 1 {
		density = 2 * float64(edges) / float64(n*(n-1))
	}

	return Stats{
		Nodes:     n,
		Edges:     edges,
		AvgDegree: float64(sumDeg) / float64(n),
		MaxDegree: maxDeg,
		MinDegree: minDeg,
		Density:   density,
	}
}
