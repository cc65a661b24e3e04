package unitofwork

import (
	"context"

	"myfolio-chatbot-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	KnowledgeDocumentRepository() contract.KnowledgeDocumentRepository
	ChatLogRepository() contract.ChatLogRepository
}
