package mapper

import (
	"encoding/json"

	"myfolio-chatbot-be/internal/entity"
	"myfolio-chatbot-be/internal/model"

	"gorm.io/datatypes"
)

type ChatLogMapper struct{}

func NewChatLogMapper() *ChatLogMapper {
	return &ChatLogMapper{}
}

func (m *ChatLogMapper) ToEntity(e *model.ChatLog) *entity.ChatLog {
	if e == nil {
		return nil
	}

	return &entity.ChatLog{
		Id:        e.Id,
		UserId:    e.UserId,
		Category:  e.Category,
		Question:  e.Question,
		Answer:    e.Answer,
		Documents: json.RawMessage(e.Documents),
		CreatedAt: e.CreatedAt,
	}
}

func (m *ChatLogMapper) ToModel(e *entity.ChatLog) *model.ChatLog {
	if e == nil {
		return nil
	}

	return &model.ChatLog{
		Id:        e.Id,
		UserId:    e.UserId,
		Category:  e.Category,
		Question:  e.Question,
		Answer:    e.Answer,
		Documents: datatypes.JSON(e.Documents),
		CreatedAt: e.CreatedAt,
	}
}

func (m *ChatLogMapper) ToEntities(logs []*model.ChatLog) []*entity.ChatLog {
	entities := make([]*entity.ChatLog, len(logs))
	for i, l := range logs {
		entities[i] = m.ToEntity(l)
	}
	return entities
}
