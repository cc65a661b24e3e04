package graph

import (
	"context"
	"fmt"
	"log"

	"myfolio-chatbot-be/pkg/rag/state"
)

// EndNode is the terminal sentinel. A selector or edge pointing here stops
// traversal.
const EndNode = "__end__"

// Handler executes one node against the shared request state.
type Handler func(ctx context.Context, s *state.RequestState) error

// Selector picks the next node name after its node ran. It must be total:
// every state maps to exactly one node name (possibly EndNode).
type Selector func(s *state.RequestState) string

// Graph is an explicit acyclic pipeline: a mapping from node name to handler
// plus, per node, either a fixed next node or a selector. The executor owns
// traversal; nodes never schedule each other.
type Graph struct {
	entry     string
	nodes     map[string]Handler
	edges     map[string]string
	selectors map[string]Selector
	logger    *log.Logger
}

// New creates an empty graph with the given entry node.
func New(entry string, logger *log.Logger) *Graph {
	return &Graph{
		entry:     entry,
		nodes:     make(map[string]Handler),
		edges:     make(map[string]string),
		selectors: make(map[string]Selector),
		logger:    logger,
	}
}

// AddNode registers a handler under a node name.
func (g *Graph) AddNode(name string, h Handler) {
	g.nodes[name] = h
}

// AddEdge registers an unconditional transition.
func (g *Graph) AddEdge(from, to string) {
	g.edges[from] = to
}

// AddConditionalEdge registers a selector-driven transition.
func (g *Graph) AddConditionalEdge(from string, sel Selector) {
	g.selectors[from] = sel
}

// Run traverses the graph from the entry node until EndNode. Each node runs
// exactly once per request; the step bound catches wiring mistakes that would
// otherwise loop forever.
func (g *Graph) Run(ctx context.Context, s *state.RequestState) error {
	maxSteps := len(g.nodes) + 1

	current := g.entry
	for step := 0; current != EndNode; step++ {
		if step >= maxSteps {
			return fmt.Errorf("graph: exceeded %d steps at node %q, cycle in wiring", maxSteps, current)
		}

		handler, ok := g.nodes[current]
		if !ok {
			return fmt.Errorf("graph: unknown node %q", current)
		}

		g.logger.Printf("[GRAPH] Entering node: %s", current)
		if err := handler(ctx, s); err != nil {
			return fmt.Errorf("graph: node %q: %w", current, err)
		}

		next, err := g.next(current, s)
		if err != nil {
			return err
		}
		current = next
	}

	return nil
}

func (g *Graph) next(current string, s *state.RequestState) (string, error) {
	if sel, ok := g.selectors[current]; ok {
		next := sel(s)
		if next == "" {
			return "", fmt.Errorf("graph: selector for %q returned no node", current)
		}
		return next, nil
	}
	if next, ok := g.edges[current]; ok {
		return next, nil
	}
	return "", fmt.Errorf("graph: node %q has no outgoing edge", current)
}

// Validate checks that every registered edge and selector source points at a
// known node and that the entry node exists. Selector targets are runtime
// values and are checked during Run.
func (g *Graph) Validate() error {
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("graph: entry node %q not registered", g.entry)
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("graph: edge from unknown node %q", from)
		}
		if to != EndNode {
			if _, ok := g.nodes[to]; !ok {
				return fmt.Errorf("graph: edge from %q to unknown node %q", from, to)
			}
		}
	}
	for from := range g.selectors {
		if _, ok := g.nodes[from]; !ok {
			return fmt.Errorf("graph: selector on unknown node %q", from)
		}
	}
	return nil
}
