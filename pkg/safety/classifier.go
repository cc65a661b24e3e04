package safety

import (
	"context"
	"log"

	"myfolio-chatbot-be/pkg/rag/state"
)

// Classifier decides whether raw question text contains disallowed content
// (profanity/abuse). Failure is a distinguishable error, not a verdict.
type Classifier interface {
	Flagged(ctx context.Context, text string) (bool, error)
}

// Gate is the pipeline's safety node. A flagged question terminates the
// request before any retriever, generator, memory write or log write runs.
//
// Classifier failure is handled FAIL-CLOSED: an error counts as flagged and
// the request is denied. A classifier outage therefore degrades to refusing
// answers, never to letting abuse through.
type Gate struct {
	classifier Classifier
	logger     *log.Logger
}

func NewGate(classifier Classifier, logger *log.Logger) *Gate {
	return &Gate{
		classifier: classifier,
		logger:     logger,
	}
}

// Check sets s.Blocked from the classifier verdict. It never returns an
// error: the fail-closed policy folds errors into the blocked branch.
func (g *Gate) Check(ctx context.Context, s *state.RequestState) error {
	flagged, err := g.classifier.Flagged(ctx, s.Question)
	if err != nil {
		g.logger.Printf("[SAFETY] Classifier error, denying request (fail-closed): %v", err)
		s.Blocked = true
		return nil
	}

	if flagged {
		g.logger.Printf("[SAFETY] Question flagged, denying request")
	}
	s.Blocked = flagged
	return nil
}
