package retriever

import (
	"context"
	"fmt"
	"log"
	"time"

	"myfolio-chatbot-be/internal/repository/unitofwork"
	"myfolio-chatbot-be/pkg/embedding"
	"myfolio-chatbot-be/pkg/rag/state"
)

// RetrievalError signals that the external search capability failed. The
// request fails as a whole; the pipeline never falls through to generation
// with partial documents.
type RetrievalError struct {
	Domain string
	Err    error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed for domain %q: %v", e.Domain, e.Err)
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// Config encapsulates search parameters. Timeout bounds one retrieval pass
// (embedding call plus index search); zero leaves the caller's deadline as is.
type Config struct {
	TopK      int
	Threshold float64
	Timeout   time.Duration
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		TopK:      5,
		Threshold: 0.3,
		Timeout:   15 * time.Second,
	}
}

// Retriever wraps the search capability scoped to one knowledge domain. It
// embeds the question and runs a domain-filtered cosine search against the
// knowledge corpus. Ranking is delegated to the index; an empty result is
// valid. The only request-state field a retriever writes is Documents.
type Retriever struct {
	domain            string
	embeddingProvider embedding.EmbeddingProvider
	uowFactory        unitofwork.RepositoryFactory
	config            Config
	logger            *log.Logger
}

func New(
	domain string,
	embeddingProvider embedding.EmbeddingProvider,
	uowFactory unitofwork.RepositoryFactory,
	config Config,
	logger *log.Logger,
) *Retriever {
	return &Retriever{
		domain:            domain,
		embeddingProvider: embeddingProvider,
		uowFactory:        uowFactory,
		config:            config,
		logger:            logger,
	}
}

// Domain returns the knowledge domain this retriever is bound to.
func (r *Retriever) Domain() string {
	return r.domain
}

// Retrieve fills s.Documents with the top-ranked matches for the question.
// Exceeding the configured timeout is a RetrievalError, not a hang.
func (r *Retriever) Retrieve(ctx context.Context, s *state.RequestState) error {
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	embeddingRes, err := r.embeddingProvider.Generate(ctx, s.Question, "RETRIEVAL_QUERY")
	if err != nil {
		return &RetrievalError{Domain: r.domain, Err: fmt.Errorf("embedding generation failed: %w", err)}
	}

	uow := r.uowFactory.NewUnitOfWork(ctx)
	scored, err := uow.KnowledgeDocumentRepository().SearchSimilarByDomain(
		ctx,
		r.domain,
		embeddingRes.Embedding.Values,
		r.config.TopK,
		r.config.Threshold,
	)
	if err != nil {
		return &RetrievalError{Domain: r.domain, Err: err}
	}

	documents := make([]state.Document, 0, len(scored))
	for _, sc := range scored {
		documents = append(documents, state.Document{
			Content:  sc.Document.Content,
			Metadata: sc.Document.Metadata,
		})
	}

	r.logger.Printf("[RETRIEVER] Domain %s: %d documents for question %q",
		r.domain, len(documents), truncate(s.Question, 40))

	s.Documents = documents
	return nil
}

// truncate shortens log output without splitting a multi-byte rune.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
