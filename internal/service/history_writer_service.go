package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"blocknote-be/internal/dto"
	"blocknote-be/internal/entity"
	"blocknote-be/internal/pkg/logger"
	"blocknote-be/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// ActivityNotifier pushes realtime activity events to the owner's
// connected clients. Implemented by the websocket hub; may be nil.
type ActivityNotifier interface {
	SendActivity(userId uuid.UUID, event dto.ActivityEvent)
}

// IHistoryWriterService consumes history jobs from the in-process
// topic and persists them. Retriable failures are redelivered up to
// maxAttempts times; after that the job is dropped and counted as
// failed so the loss is at least observable.
type IHistoryWriterService interface {
	Consume(ctx context.Context) error
	RecordedCount() int64
	FailedCount() int64
}

type historyWriterService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	uowFactory  unitofwork.RepositoryFactory
	notifier    ActivityNotifier
	logger      logger.ILogger
	maxAttempts int

	mu       sync.Mutex
	attempts map[string]int

	recorded atomic.Int64
	failed   atomic.Int64
}

func NewHistoryWriterService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	notifier ActivityNotifier,
	log logger.ILogger,
	maxAttempts int,
) IHistoryWriterService {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &historyWriterService{
		pubSub:      pubSub,
		topicName:   topicName,
		uowFactory:  uowFactory,
		notifier:    notifier,
		logger:      log,
		maxAttempts: maxAttempts,
		attempts:    map[string]int{},
	}
}

func (s *historyWriterService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	s.logger.Info("HistoryWriter", "Consuming history jobs", map[string]interface{}{
		"topic": s.topicName,
	})

	for msg := range messages {
		s.handleMessage(ctx, msg)
	}
	return nil
}

func (s *historyWriterService) handleMessage(ctx context.Context, msg *message.Message) {
	var payload dto.RecordHistoryMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		s.logger.Error("HistoryWriter", "Dropping malformed history job", map[string]interface{}{
			"message_id": msg.UUID, "error": err.Error(),
		})
		s.failed.Add(1)
		msg.Ack()
		return
	}

	if payload.UserId == uuid.Nil || payload.PageId == uuid.Nil {
		s.logger.Error("HistoryWriter", "Dropping history job without owner or page", map[string]interface{}{
			"message_id": msg.UUID, "operation": payload.Operation,
		})
		s.failed.Add(1)
		msg.Ack()
		return
	}

	if err := s.persist(ctx, &payload); err != nil {
		if s.bumpAttempts(msg.UUID) >= s.maxAttempts {
			s.logger.Error("HistoryWriter", "History entry lost after retries", map[string]interface{}{
				"message_id": msg.UUID, "page_id": payload.PageId,
				"operation": payload.Operation, "error": err.Error(),
			})
			s.failed.Add(1)
			s.clearAttempts(msg.UUID)
			msg.Ack()
			return
		}
		s.logger.Warn("HistoryWriter", "History write failed, retrying", map[string]interface{}{
			"message_id": msg.UUID, "page_id": payload.PageId, "error": err.Error(),
		})
		msg.Nack()
		return
	}

	s.recorded.Add(1)
	s.clearAttempts(msg.UUID)
	msg.Ack()
}

func (s *historyWriterService) persist(ctx context.Context, payload *dto.RecordHistoryMessage) error {
	record := &entity.BlockHistory{
		UserId:       payload.UserId,
		PageId:       payload.PageId,
		BlockId:      payload.BlockId,
		Operation:    payload.Operation,
		BlockData:    payload.BlockData,
		SnapshotData: payload.Snapshot,
		CreatedBy:    payload.CreatedBy,
		CreatedAt:    time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.BlockHistoryRepository().Create(ctx, record); err != nil {
		return err
	}

	s.logger.Info("HistoryWriter", "History entry recorded", map[string]interface{}{
		"history_id": record.Id, "page_id": record.PageId, "operation": record.Operation,
	})

	if s.notifier != nil {
		s.notifier.SendActivity(payload.UserId, dto.ActivityEvent{
			Type:       "history_recorded",
			PageId:     payload.PageId,
			HistoryId:  record.Id,
			Operation:  payload.Operation,
			OccurredAt: record.CreatedAt,
		})
	}
	return nil
}

func (s *historyWriterService) bumpAttempts(messageId string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[messageId]++
	return s.attempts[messageId]
}

func (s *historyWriterService) clearAttempts(messageId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, messageId)
}

func (s *historyWriterService) RecordedCount() int64 {
	return s.recorded.Load()
}

func (s *historyWriterService) FailedCount() int64 {
	return s.failed.Load()
}
