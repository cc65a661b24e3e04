package implementation

import (
	"context"
	"errors"

	"myfolio-chatbot-be/internal/entity"
	"myfolio-chatbot-be/internal/mapper"
	"myfolio-chatbot-be/internal/model"
	"myfolio-chatbot-be/internal/repository/contract"
	"myfolio-chatbot-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type KnowledgeDocumentRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.KnowledgeDocumentMapper
}

func NewKnowledgeDocumentRepository(db *gorm.DB) contract.KnowledgeDocumentRepository {
	return &KnowledgeDocumentRepositoryImpl{
		db:     db,
		mapper: mapper.NewKnowledgeDocumentMapper(),
	}
}

func (r *KnowledgeDocumentRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *KnowledgeDocumentRepositoryImpl) Create(ctx context.Context, doc *entity.KnowledgeDocument) error {
	m := r.mapper.ToModel(doc)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*doc = *r.mapper.ToEntity(m)
	return nil
}

func (r *KnowledgeDocumentRepositoryImpl) CreateBulk(ctx context.Context, docs []*entity.KnowledgeDocument) error {
	models := make([]*model.KnowledgeDocument, len(docs))
	for i, d := range docs {
		models[i] = r.mapper.ToModel(d)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	for i, m := range models {
		*docs[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *KnowledgeDocumentRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.KnowledgeDocument{}, id).Error
}

func (r *KnowledgeDocumentRepositoryImpl) DeleteByDomain(ctx context.Context, domain string) error {
	return r.db.WithContext(ctx).Where("domain = ?", domain).Delete(&model.KnowledgeDocument{}).Error
}

func (r *KnowledgeDocumentRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeDocument, error) {
	var m model.KnowledgeDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *KnowledgeDocumentRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeDocument, error) {
	var models []*model.KnowledgeDocument
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *KnowledgeDocumentRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.KnowledgeDocument{}).Count(&count).Error
	return count, err
}

// SearchSimilarByDomain returns documents of one domain with similarity scores,
// filtered by threshold
func (r *KnowledgeDocumentRepositoryImpl) SearchSimilarByDomain(ctx context.Context, domain string, embedding []float32, limit int, threshold float64) ([]*contract.ScoredKnowledgeDocument, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding <=> query_vector) = cosine_similarity
	type result struct {
		model.KnowledgeDocument
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("knowledge_documents").
		Select("knowledge_documents.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("domain = ?", domain).
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredKnowledgeDocument, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredKnowledgeDocument{
			Document:   r.mapper.ToEntity(&res.KnowledgeDocument),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
