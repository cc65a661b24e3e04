package contract

import (
	"context"

	"myfolio-chatbot-be/internal/entity"
	"myfolio-chatbot-be/internal/repository/specification"
)

// ChatLogRepository is the append-only external chat log sink.
type ChatLogRepository interface {
	Create(ctx context.Context, log *entity.ChatLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ChatLog, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
