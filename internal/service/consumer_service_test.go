package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"myfolio-chatbot-be/internal/dto"
	"myfolio-chatbot-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatLoggedEvent(t *testing.T, payload dto.PublishChatLogMessage) events.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &data))

	return events.NewChatLogged(data)
}

func TestProcessEventPersistsChatLog(t *testing.T) {
	repo := &stubChatLogRepo{}
	cs := &consumerService{uowFactory: &stubUowFactory{uow: &stubUow{chatLogRepo: repo}}}

	askedAt := time.Now().Truncate(time.Second)
	event := chatLoggedEvent(t, dto.PublishChatLogMessage{
		UserId:   "u1",
		Category: "과목 선택",
		Question: "미적분 들을까요?",
		Answer:   "미적분을 추천드려요.",
		Documents: []dto.DocumentDTO{
			{Content: "수학 교과 안내", Metadata: map[string]string{"source": "교육과정"}},
		},
		AskedAt: askedAt,
	})

	require.NoError(t, cs.processEvent(context.Background(), event))
	require.Len(t, repo.logs, 1)

	saved := repo.logs[0]
	assert.Equal(t, "u1", saved.UserId)
	assert.Equal(t, "과목 선택", saved.Category)
	assert.Equal(t, "미적분 들을까요?", saved.Question)
	assert.Equal(t, "미적분을 추천드려요.", saved.Answer)
	assert.True(t, askedAt.Equal(saved.CreatedAt))

	var docs []dto.DocumentDTO
	require.NoError(t, json.Unmarshal(saved.Documents, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "수학 교과 안내", docs[0].Content)
}

func TestProcessEventDropsMalformedPayload(t *testing.T) {
	repo := &stubChatLogRepo{}
	cs := &consumerService{uowFactory: &stubUowFactory{uow: &stubUow{chatLogRepo: repo}}}

	event := events.NewChatLogged(map[string]interface{}{
		"user_id":  12345, // wrong type
		"asked_at": "not a timestamp",
	})

	// Malformed payloads are dropped, not redelivered forever.
	assert.NoError(t, cs.processEvent(context.Background(), event))
	assert.Empty(t, repo.logs)
}

func TestProcessEventPersistFailureIsRetriable(t *testing.T) {
	repo := &stubChatLogRepo{createErr: errors.New("connection reset")}
	cs := &consumerService{uowFactory: &stubUowFactory{uow: &stubUow{chatLogRepo: repo}}}

	event := chatLoggedEvent(t, dto.PublishChatLogMessage{
		UserId:   "u1",
		Question: "질문",
		Answer:   "답변",
		AskedAt:  time.Now(),
	})

	assert.Error(t, cs.processEvent(context.Background(), event))
}
