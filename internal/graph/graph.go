// Package graph composes roles into a directed workflow: named nodes,
// static and conditional edges, and a runner that checkpoints state at
// every node boundary so runs can suspend before configured nodes and
// resume deterministically with an external update.
package graph

import (
	"context"
	"fmt"

	"github.com/opaline-dev/troupe/internal/state"
)

// Pseudo-states bounding every workflow.
const (
	Start = "__start__"
	End   = "__end__"
)

// NodeFunc is a pure transition: current state in, partial update out.
type NodeFunc func(ctx context.Context, st *state.State) (state.Patch, error)

// RouteFunc inspects the state after a node ran and names the next node.
type RouteFunc func(st *state.State) string

// Graph is a directed flow over named nodes. Each node has either a static
// successor or a conditional route, never both.
type Graph struct {
	nodes  map[string]NodeFunc
	edges  map[string]string
	routes map[string]RouteFunc
	entry  string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		nodes:  map[string]NodeFunc{},
		edges:  map[string]string{},
		routes: map[string]RouteFunc{},
	}
}

// AddNode registers a named node.
func (g *Graph) AddNode(name string, fn NodeFunc) error {
	if name == "" || name == Start || name == End {
		return fmt.Errorf("graph: invalid node name %q", name)
	}
	if fn == nil {
		return fmt.Errorf("graph: node %s requires a function", name)
	}
	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("graph: node %s already added", name)
	}
	g.nodes[name] = fn
	return nil
}

// AddEdge wires a static successor. An edge from Start sets the entry node.
func (g *Graph) AddEdge(from, to string) error {
	if from == Start {
		if g.entry != "" {
			return fmt.Errorf("graph: entry already set to %s", g.entry)
		}
		g.entry = to
		return nil
	}
	if _, ok := g.routes[from]; ok {
		return fmt.Errorf("graph: node %s already has a conditional edge", from)
	}
	g.edges[from] = to
	return nil
}

// AddConditionalEdge wires a routing function evaluated after the node runs.
func (g *Graph) AddConditionalEdge(from string, route RouteFunc) error {
	if route == nil {
		return fmt.Errorf("graph: node %s requires a route function", from)
	}
	if _, ok := g.edges[from]; ok {
		return fmt.Errorf("graph: node %s already has a static edge", from)
	}
	g.routes[from] = route
	return nil
}

// Validate checks the graph is runnable: an entry exists and every edge
// endpoint names a known node.
func (g *Graph) Validate() error {
	if g.entry == "" {
		return fmt.Errorf("graph: no entry edge from %s", Start)
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("graph: entry node %s is not defined", g.entry)
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("graph: edge from undefined node %s", from)
		}
		if to != End {
			if _, ok := g.nodes[to]; !ok {
				return fmt.Errorf("graph: edge %s -> undefined node %s", from, to)
			}
		}
	}
	for from := range g.routes {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("graph: conditional edge from undefined node %s", from)
		}
	}
	for name := range g.nodes {
		_, static := g.edges[name]
		_, routed := g.routes[name]
		if !static && !routed {
			return fmt.Errorf("graph: node %s has no outgoing edge", name)
		}
	}
	return nil
}

// Entry returns the node reached from Start.
func (g *Graph) Entry() string {
	return g.entry
}

// HasNode reports whether a node name is defined.
func (g *Graph) HasNode(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

func (g *Graph) next(from string, st *state.State) (string, error) {
	if to, ok := g.edges[from]; ok {
		return to, nil
	}
	if route, ok := g.routes[from]; ok {
		to := route(st)
		if to == End {
			return End, nil
		}
		if _, defined := g.nodes[to]; !defined {
			return "", fmt.Errorf("graph: route from %s names undefined node %s", from, to)
		}
		return to, nil
	}
	return "", fmt.Errorf("graph: node %s has no outgoing edge", from)
}
