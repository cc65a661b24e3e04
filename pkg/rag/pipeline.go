package rag

import (
	"context"
	"fmt"
	"log"

	"myfolio-chatbot-be/pkg/rag/generate"
	"myfolio-chatbot-be/pkg/rag/graph"
	"myfolio-chatbot-be/pkg/rag/retriever"
	"myfolio-chatbot-be/pkg/rag/router"
	"myfolio-chatbot-be/pkg/rag/state"
	"myfolio-chatbot-be/pkg/safety"
)

// Node names. The retrieval branches double as node names, so the router's
// branch decision is the graph transition.
const (
	NodeSafety   = "profanity_prevention"
	NodeRouter   = "route_question"
	NodeGenerate = "generate"
)

// BranchDomains maps each retrieval branch to the knowledge domain its
// retriever searches.
var BranchDomains = map[string]string{
	router.BranchSearchPolicy:    "policy",
	router.BranchSearchSubject:   "subject",
	router.BranchSearchAdmission: "admission",
	router.BranchSearchBook:      "book",
	router.BranchSearchService:   "service",
}

// Pipeline is the per-request state machine: safety gate, category router,
// one retrieval branch (or the fallback), one terminal generator. Exactly one
// terminal node executes per request; there are no cycles and no retries.
type Pipeline struct {
	graph *graph.Graph
}

// NewPipeline wires the graph. retrievers must carry one retriever per
// retrieval branch in BranchDomains.
func NewPipeline(
	gate *safety.Gate,
	categoryRouter *router.Router,
	retrievers map[string]*retriever.Retriever,
	generator *generate.Generator,
	logger *log.Logger,
) (*Pipeline, error) {
	for branch := range BranchDomains {
		if _, ok := retrievers[branch]; !ok {
			return nil, fmt.Errorf("pipeline: no retriever for branch %q", branch)
		}
	}

	g := graph.New(NodeSafety, logger)

	g.AddNode(NodeSafety, gate.Check)
	g.AddConditionalEdge(NodeSafety, func(s *state.RequestState) string {
		if s.Blocked {
			return graph.EndNode
		}
		return NodeRouter
	})

	g.AddNode(NodeRouter, categoryRouter.Route)
	g.AddConditionalEdge(NodeRouter, func(s *state.RequestState) string {
		return s.NextNode
	})

	for branch, r := range retrievers {
		g.AddNode(branch, r.Retrieve)
		g.AddEdge(branch, NodeGenerate)
	}

	g.AddNode(NodeGenerate, generator.Generate)
	g.AddEdge(NodeGenerate, graph.EndNode)

	g.AddNode(router.BranchFallback, generator.Fallback)
	g.AddEdge(router.BranchFallback, graph.EndNode)

	if err := g.Validate(); err != nil {
		return nil, err
	}

	return &Pipeline{graph: g}, nil
}

// Run executes one synchronous pass for a request. On return either
// s.Blocked is set (denial) or s.Generation carries the single terminal
// answer.
func (p *Pipeline) Run(ctx context.Context, s *state.RequestState) error {
	return p.graph.Run(ctx, s)
}
