package service

import (
	"context"
	"time"

	"blocknote-be/internal/pkg/logger"
	"blocknote-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IRetentionService prunes history records past a configured age.
// Exposed both over HTTP (always owner-scoped) and as a maintenance
// command that may sweep all owners at once.
type IRetentionService interface {
	CleanupOldHistory(ctx context.Context, days int, userId *uuid.UUID) (int64, error)
}

type retentionService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewRetentionService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IRetentionService {
	return &retentionService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *retentionService) CleanupOldHistory(ctx context.Context, days int, userId *uuid.UUID) (int64, error) {
	if days <= 0 {
		return 0, validationError("retention days must be positive")
	}
	if userId != nil && *userId == uuid.Nil {
		return 0, validationError("user id is required")
	}

	cutoff := time.Now().AddDate(0, 0, -days)

	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.BlockHistoryRepository().DeleteOlderThan(ctx, cutoff, userId)
	if err != nil {
		return 0, err
	}

	details := map[string]interface{}{
		"deleted_count": deleted, "cutoff": cutoff.Format(time.RFC3339), "days": days,
	}
	if userId != nil {
		details["user_id"] = userId.String()
	}
	s.logger.Info("RetentionService", "Old history cleaned up", details)

	return deleted, nil
}
