package main

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"myfolio-chatbot-be/internal/config"
	"myfolio-chatbot-be/internal/entity"
	"myfolio-chatbot-be/internal/repository/unitofwork"
	"myfolio-chatbot-be/pkg/database"
	"myfolio-chatbot-be/pkg/embedding"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// seedDocument is one corpus entry of the seed file.
type seedDocument struct {
	Domain   string            `json:"domain"`
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

var knownDomains = map[string]bool{
	entity.DomainPolicy:    true,
	entity.DomainSubject:   true,
	entity.DomainAdmission: true,
	entity.DomainBook:      true,
	entity.DomainService:   true,
}

func fatal(format string, args ...interface{}) {
	color.Red(format, args...)
	os.Exit(1)
}

// Seeds the knowledge corpus from a JSON file: embeds each entry and
// bulk-inserts it into knowledge_documents.
//
// Usage: go run ./cmd/seed corpus.json
func main() {
	if len(os.Args) < 2 {
		fatal("Usage: seed <corpus.json>")
	}

	cfg := config.Load()

	raw, err := os.ReadFile(os.Args[1])
	if err != nil {
		fatal("Failed to read corpus file: %v", err)
	}

	var seeds []seedDocument
	if err := json.Unmarshal(raw, &seeds); err != nil {
		fatal("Failed to parse corpus file: %v", err)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		fatal("Failed to connect to database: %v", err)
	}

	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel, cfg.Ai.EmbeddingTimeout)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini, cfg.Ai.EmbeddingTimeout)
	}

	color.Cyan("🚀 Seeding %d documents", len(seeds))

	docs := make([]*entity.KnowledgeDocument, 0, len(seeds))
	for i, seed := range seeds {
		if !knownDomains[seed.Domain] {
			fatal("Entry %d has unknown domain %q", i, seed.Domain)
		}

		res, err := embeddingProvider.Generate(context.Background(), seed.Content, "RETRIEVAL_DOCUMENT")
		if err != nil {
			fatal("Embedding entry %d failed: %v", i, err)
		}

		now := time.Now()
		docs = append(docs, &entity.KnowledgeDocument{
			Id:        uuid.New(),
			Domain:    seed.Domain,
			Content:   seed.Content,
			Metadata:  seed.Metadata,
			Embedding: res.Embedding.Values,
			CreatedAt: now,
		})

		if (i+1)%25 == 0 {
			color.Yellow("Embedded %d/%d", i+1, len(seeds))
		}
	}

	uow := unitofwork.NewRepositoryFactory(db).NewUnitOfWork(context.Background())
	if err := uow.KnowledgeDocumentRepository().CreateBulk(context.Background(), docs); err != nil {
		fatal("Failed to insert documents: %v", err)
	}

	color.Green("✅ Seeded %d documents", len(docs))
}
