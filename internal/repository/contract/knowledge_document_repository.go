package contract

import (
	"context"

	"myfolio-chatbot-be/internal/entity"
	"myfolio-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredKnowledgeDocument wraps KnowledgeDocument with its similarity score
type ScoredKnowledgeDocument struct {
	Document   *entity.KnowledgeDocument
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type KnowledgeDocumentRepository interface {
	Create(ctx context.Context, doc *entity.KnowledgeDocument) error
	CreateBulk(ctx context.Context, docs []*entity.KnowledgeDocument) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDomain(ctx context.Context, domain string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeDocument, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeDocument, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarByDomain returns the top-ranked documents of one domain by
	// cosine similarity, filtered by threshold. An empty result is valid.
	SearchSimilarByDomain(ctx context.Context, domain string, embedding []float32, limit int, threshold float64) ([]*ScoredKnowledgeDocument, error)
}
