package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"myfolio-chatbot-be/internal/dto"
	"myfolio-chatbot-be/pkg/events"
	pktNats "myfolio-chatbot-be/pkg/nats"
	"myfolio-chatbot-be/pkg/rag/state"
)

// chatLogSink forwards finished exchanges to the chat-log transport. The
// consumer persists them; generation never waits on the database. With NATS
// enabled the record travels as a durable CHAT_LOGGED event on the JetStream
// bus; otherwise it goes over the in-process topic.
type chatLogSink struct {
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
}

func NewChatLogSink(publisherService IPublisherService, eventPublisher *pktNats.Publisher) *chatLogSink {
	return &chatLogSink{
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
	}
}

func (s *chatLogSink) Append(ctx context.Context, question, answer, userID, category string, documents []state.Document) error {
	payload := dto.PublishChatLogMessage{
		UserId:   userID,
		Category: category,
		Question: question,
		Answer:   answer,
		AskedAt:  time.Now(),
	}
	for _, doc := range documents {
		payload.Documents = append(payload.Documents, dto.DocumentDTO{
			Content:  doc.Content,
			Metadata: doc.Metadata,
		})
	}

	msgJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if s.eventPublisher != nil {
		var data map[string]interface{}
		if err := json.Unmarshal(msgJson, &data); err != nil {
			return fmt.Errorf("build chat event payload: %w", err)
		}
		return s.eventPublisher.Publish(ctx, events.NewChatLogged(data))
	}

	return s.publisherService.Publish(ctx, msgJson)
}
