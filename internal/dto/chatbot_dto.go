package dto

import (
	"time"

	"github.com/google/uuid"
)

type SendChatRequest struct {
	Question string `json:"question" validate:"required"`
	UserId   string `json:"user_id" validate:"required"`
	// Category is the caller-preselected category. Optional; values outside
	// the known category set fall back to text classification.
	Category string `json:"category,omitempty"`
}

type DocumentDTO struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

type SendChatResponse struct {
	Answer    string        `json:"answer"`
	Category  string        `json:"category"`
	Blocked   bool          `json:"blocked"`
	Documents []DocumentDTO `json:"documents"`
}

type GetCategoriesResponse struct {
	Categories []string `json:"categories"`
}

type GetChatHistoryResponse struct {
	Id        uuid.UUID `json:"id"`
	Category  string    `json:"category"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// PublishChatLogMessage is the payload carried on the chat-log topic. The
// consumer persists it; the request path never blocks on the database write.
type PublishChatLogMessage struct {
	UserId    string        `json:"user_id"`
	Category  string        `json:"category"`
	Question  string        `json:"question"`
	Answer    string        `json:"answer"`
	Documents []DocumentDTO `json:"documents,omitempty"`
	AskedAt   time.Time     `json:"asked_at"`
}
