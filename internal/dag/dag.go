package dag

import (
	"fmt"
	"slices"
	"strings"
)

// New creates and returns an initialized, empty Graph.
func New[K comparable]() *Graph[K] {
	return &Graph[K]{
		nodes: make(map[K]*node[K]),
	}
}

// AddNode adds a new node with the given ID to the graph. If a node with
// the same ID already exists, the function does nothing.
func (g *Graph[K]) AddNode(id K) {
	g.mutex.Lock()
	defer g.mutex.Unlock()
	g.addNodeLocked(id)
}

func (g *Graph[K]) addNodeLocked(id K) *node[K] {
	if n, ok := g.nodes[id]; ok {
		return n
	}
	n := &node[K]{
		id:            id,
		index:         len(g.order),
		deps:          make(map[K]*node[K]),
		dependentsSet: make(map[K]struct{}),
	}
	g.nodes[id] = n
	g.order = append(g.order, id)
	return n
}

// Len returns the number of nodes.
func (g *Graph[K]) Len() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()
	return len(g.nodes)
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node.
// This signifies that `toID` has a dependency on `fromID`. An edge from a
// node to itself is allowed: it is the smallest cycle. An error is returned
// if either node does not exist.
func (g *Graph[K]) AddEdge(fromID, toID K) error {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %v", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %v", toID)
	}

	toNode.deps[fromID] = fromNode
	if _, dup := fromNode.dependentsSet[toID]; !dup {
		fromNode.dependentsSet[toID] = struct{}{}
		fromNode.dependents = append(fromNode.dependents, toNode)
	}
	return nil
}

// Dependencies returns the IDs the given node depends on, in insertion order
// of those nodes.
func (g *Graph[K]) Dependencies(id K) ([]K, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %v", id)
	}
	deps := make([]*node[K], 0, len(n.deps))
	for _, d := range n.deps {
		deps = append(deps, d)
	}
	slices.SortFunc(deps, func(a, b *node[K]) int { return a.index - b.index })
	out := make([]K, len(deps))
	for i, d := range deps {
		out[i] = d.id
	}
	return out, nil
}

// Dependents returns the IDs that depend on the given node.
func (g *Graph[K]) Dependents(id K) ([]K, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node not found: %v", id)
	}
	out := make([]K, len(n.dependents))
	for i, d := range n.dependents {
		out[i] = d.id
	}
	return out, nil
}

// CycleError reports one dependency cycle.
type CycleError[K comparable] struct {
	Members []K
}

func (e *CycleError[K]) Error() string {
	parts := make([]string, len(e.Members))
	for i, m := range e.Members {
		parts[i] = fmt.Sprint(m)
	}
	return fmt.Sprintf("cycle detected involving nodes: %s", strings.Join(parts, ", "))
}

// DetectCycles returns a *CycleError for the first cycle found, or nil.
func (g *Graph[K]) DetectCycles() error {
	cycles := g.Cycles()
	if len(cycles) == 0 {
		return nil
	}
	return &CycleError[K]{Members: cycles[0]}
}

// Cycles returns every cycle in the graph: each strongly connected component
// with more than one node, or a single node with an edge to itself. Members
// are ordered by node insertion, and cycles by their first member.
func (g *Graph[K]) Cycles() [][]K {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	// Tarjan's algorithm over the dependents edges.
	index := 0
	indices := make(map[K]int, len(g.nodes))
	lowlink := make(map[K]int, len(g.nodes))
	onStack := make(map[K]bool, len(g.nodes))
	var stack []*node[K]
	var components [][]*node[K]

	var strongConnect func(n *node[K])
	strongConnect = func(n *node[K]) {
		indices[n.id] = index
		lowlink[n.id] = index
		index++
		stack = append(stack, n)
		onStack[n.id] = true

		for _, dep := range n.dependents {
			if _, seen := indices[dep.id]; !seen {
				strongConnect(dep)
				lowlink[n.id] = min(lowlink[n.id], lowlink[dep.id])
			} else if onStack[dep.id] {
				lowlink[n.id] = min(lowlink[n.id], indices[dep.id])
			}
		}

		if lowlink[n.id] == indices[n.id] {
			var comp []*node[K]
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top.id] = false
				comp = append(comp, top)
				if top == n {
					break
				}
			}
			components = append(components, comp)
		}
	}

	for _, id := range g.order {
		if _, seen := indices[id]; !seen {
			strongConnect(g.nodes[id])
		}
	}

	var cycles [][]*node[K]
	for _, comp := range components {
		if len(comp) == 1 {
			if _, self := comp[0].dependentsSet[comp[0].id]; !self {
				continue
			}
		}
		slices.SortFunc(comp, func(a, b *node[K]) int { return a.index - b.index })
		cycles = append(cycles, comp)
	}
	slices.SortFunc(cycles, func(a, b []*node[K]) int { return a[0].index - b[0].index })

	out := make([][]K, len(cycles))
	for i, comp := range cycles {
		ids := make([]K, len(comp))
		for j, n := range comp {
			ids[j] = n.id
		}
		out[i] = ids
	}
	return out
}
