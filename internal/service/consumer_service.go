package service

import (
	"context"
	"encoding/json"
	"log"

	"myfolio-chatbot-be/internal/dto"
	"myfolio-chatbot-be/internal/entity"
	"myfolio-chatbot-be/internal/repository/unitofwork"
	"myfolio-chatbot-be/pkg/events"
	pktNats "myfolio-chatbot-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService persists chat-log records from whichever transport the
// sink publishes on: the durable NATS stream when a subscriber is wired,
// the in-process topic otherwise.
type consumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	natsSubscriber *pktNats.Subscriber
	uowFactory     unitofwork.RepositoryFactory
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	natsSubscriber *pktNats.Subscriber,
	uowFactory unitofwork.RepositoryFactory,
) IConsumerService {
	return &consumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		natsSubscriber: natsSubscriber,
		uowFactory:     uowFactory,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	if cs.natsSubscriber != nil {
		return cs.natsSubscriber.Subscribe(
			"chat."+events.TypeChatLogged,
			"chat-log-writer",
			cs.processEvent,
		)
	}

	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

// processEvent handles one durable CHAT_LOGGED event. A returned error Naks
// the message for redelivery; malformed payloads are dropped instead of
// retried forever.
func (cs *consumerService) processEvent(ctx context.Context, event events.Event) error {
	raw, err := json.Marshal(event.Payload())
	if err != nil {
		log.Printf("[ERROR] Failed to re-serialize chat event payload: %v", err)
		return nil
	}

	var payload dto.PublishChatLogMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Printf("[ERROR] Malformed chat event payload, dropping: %v", err)
		return nil
	}

	return cs.persist(ctx, &payload)
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishChatLogMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal chat log message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if err := cs.persist(ctx, &payload); err != nil {
		msg.Nack() // Nack for retriable errors
		return
	}

	msg.Ack()
}

func (cs *consumerService) persist(ctx context.Context, payload *dto.PublishChatLogMessage) error {
	var documents json.RawMessage
	if len(payload.Documents) > 0 {
		raw, err := json.Marshal(payload.Documents)
		if err != nil {
			// Drop the provenance rather than the record.
			log.Printf("[ERROR] Failed to marshal documents for user %s: %v", payload.UserId, err)
		} else {
			documents = raw
		}
	}

	chatLog := entity.ChatLog{
		Id:        uuid.New(),
		UserId:    payload.UserId,
		Category:  payload.Category,
		Question:  payload.Question,
		Answer:    payload.Answer,
		Documents: documents,
		CreatedAt: payload.AskedAt,
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatLogRepository().Create(ctx, &chatLog); err != nil {
		log.Printf("[ERROR] Failed to persist chat log for user %s: %v", payload.UserId, err)
		return err
	}

	return nil
}
