package mapper

import (
	"encoding/json"
	"time"

	"myfolio-chatbot-be/internal/entity"
	"myfolio-chatbot-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type KnowledgeDocumentMapper struct{}

func NewKnowledgeDocumentMapper() *KnowledgeDocumentMapper {
	return &KnowledgeDocumentMapper{}
}

func (m *KnowledgeDocumentMapper) ToEntity(e *model.KnowledgeDocument) *entity.KnowledgeDocument {
	if e == nil {
		return nil
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	metadata := map[string]string{}
	if len(e.Metadata) > 0 {
		// Metadata written by the seeder is always a flat string map;
		// anything else is dropped rather than failing the read.
		_ = json.Unmarshal(e.Metadata, &metadata)
	}

	return &entity.KnowledgeDocument{
		Id:        e.Id,
		Domain:    e.Domain,
		Content:   e.Content,
		Metadata:  metadata,
		Embedding: e.Embedding.Slice(),
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *KnowledgeDocumentMapper) ToModel(e *entity.KnowledgeDocument) *model.KnowledgeDocument {
	if e == nil {
		return nil
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var metadata datatypes.JSON
	if e.Metadata != nil {
		raw, err := json.Marshal(e.Metadata)
		if err == nil {
			metadata = raw
		}
	}

	return &model.KnowledgeDocument{
		Id:        e.Id,
		Domain:    e.Domain,
		Content:   e.Content,
		Metadata:  metadata,
		Embedding: pgvector.NewVector(e.Embedding),
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *KnowledgeDocumentMapper) ToEntities(docs []*model.KnowledgeDocument) []*entity.KnowledgeDocument {
	entities := make([]*entity.KnowledgeDocument, len(docs))
	for i, d := range docs {
		entities[i] = m.ToEntity(d)
	}
	return entities
}
