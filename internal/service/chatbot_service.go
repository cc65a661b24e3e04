package service

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"myfolio-chatbot-be/internal/constant"
	"myfolio-chatbot-be/internal/dto"
	"myfolio-chatbot-be/internal/repository/specification"
	"myfolio-chatbot-be/internal/repository/unitofwork"
	"myfolio-chatbot-be/pkg/rag"
	"myfolio-chatbot-be/pkg/rag/memory"
	"myfolio-chatbot-be/pkg/rag/state"
)

// IChatbotService defines the chatbot service interface
type IChatbotService interface {
	SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetCategories(ctx context.Context) (*dto.GetCategoriesResponse, error)
	GetChatHistory(ctx context.Context, userId string) ([]*dto.GetChatHistoryResponse, error)
}

type chatbotService struct {
	pipeline   *rag.Pipeline
	userLocks  *memory.UserLocks
	uowFactory unitofwork.RepositoryFactory
	llmLogger  *log.Logger
}

func NewChatbotService(
	pipeline *rag.Pipeline,
	userLocks *memory.UserLocks,
	uowFactory unitofwork.RepositoryFactory,
) IChatbotService {
	return &chatbotService{
		pipeline:   pipeline,
		userLocks:  userLocks,
		uowFactory: uowFactory,
		llmLogger:  initLLMLogger(),
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// SendChat runs one question through the pipeline. Requests from the same
// user are serialized so their conversation memory sees a consistent order;
// requests from different users run concurrently.
func (cs *chatbotService) SendChat(ctx context.Context, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	cs.userLocks.Lock(request.UserId)
	defer cs.userLocks.Unlock(request.UserId)

	requestState := &state.RequestState{
		Question: request.Question,
		UserID:   request.UserId,
		Category: state.ParseCategory(request.Category),
	}

	cs.llmLogger.Printf("[PIPELINE] user=%s question=%q preselected=%q",
		request.UserId, request.Question, request.Category)

	if err := cs.pipeline.Run(ctx, requestState); err != nil {
		cs.llmLogger.Printf("[PIPELINE] user=%s failed: %v", request.UserId, err)
		return nil, err
	}

	if requestState.Blocked {
		// Fixed denial string. The generators never ran, so there is no
		// generation, no memory write and no chat log entry.
		return &dto.SendChatResponse{
			Answer:    constant.ProfanityDenialMessage,
			Category:  constant.CategoryDenied,
			Blocked:   true,
			Documents: []dto.DocumentDTO{},
		}, nil
	}

	documents := make([]dto.DocumentDTO, 0, len(requestState.Documents))
	for _, doc := range requestState.Documents {
		documents = append(documents, dto.DocumentDTO{
			Content:  doc.Content,
			Metadata: doc.Metadata,
		})
	}

	return &dto.SendChatResponse{
		Answer:    requestState.Generation,
		Category:  string(requestState.Category),
		Documents: documents,
	}, nil
}

// GetCategories lists the categories a caller may preselect.
func (cs *chatbotService) GetCategories(ctx context.Context) (*dto.GetCategoriesResponse, error) {
	categories := state.Categories()
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		names = append(names, string(c))
	}
	return &dto.GetCategoriesResponse{Categories: names}, nil
}

// GetChatHistory returns the persisted chat log for a user, oldest first.
func (cs *chatbotService) GetChatHistory(ctx context.Context, userId string) ([]*dto.GetChatHistoryResponse, error) {
	uow := cs.uowFactory.NewUnitOfWork(ctx)

	logs, err := uow.ChatLogRepository().FindAll(ctx, specification.ByUserID{UserID: userId})
	if err != nil {
		return nil, err
	}

	history := make([]*dto.GetChatHistoryResponse, 0, len(logs))
	for _, chatLog := range logs {
		history = append(history, &dto.GetChatHistoryResponse{
			Id:        chatLog.Id,
			Category:  chatLog.Category,
			Question:  chatLog.Question,
			Answer:    chatLog.Answer,
			CreatedAt: chatLog.CreatedAt,
		})
	}
	return history, nil
}
