package mapper

import (
	"encoding/json"
	"testing"
	"time"

	"myfolio-chatbot-be/internal/entity"

	"github.com/google/uuid"
)

func TestChatLogMapperRoundTrip(t *testing.T) {
	m := NewChatLogMapper()
	now := time.Now()

	original := &entity.ChatLog{
		Id:        uuid.New(),
		UserId:    "u1",
		Category:  "도서 추천",
		Question:  "진로 도서 추천해주세요",
		Answer:    "제목: 수학의 쓸모",
		Documents: json.RawMessage(`[{"content":"도서 목록"}]`),
		CreatedAt: now,
	}

	got := m.ToEntity(m.ToModel(original))

	if got.Id != original.Id {
		t.Errorf("Id = %v, want %v", got.Id, original.Id)
	}
	if got.UserId != original.UserId || got.Category != original.Category {
		t.Errorf("user/category mismatch: %+v", got)
	}
	if got.Question != original.Question || got.Answer != original.Answer {
		t.Errorf("question/answer mismatch: %+v", got)
	}
	if string(got.Documents) != string(original.Documents) {
		t.Errorf("Documents = %s, want %s", got.Documents, original.Documents)
	}
	if !got.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, original.CreatedAt)
	}
}

func TestChatLogMapperNil(t *testing.T) {
	m := NewChatLogMapper()
	if m.ToEntity(nil) != nil {
		t.Error("ToEntity(nil) should be nil")
	}
	if m.ToModel(nil) != nil {
		t.Error("ToModel(nil) should be nil")
	}
}
