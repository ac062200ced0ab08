package contract

import (
	"context"
	"time"

	"blocknote-be/internal/entity"

	"github.com/google/uuid"
)

// BlockHistoryRepository is append/delete-only: records are created
// once, listed, and removed by retention. There is no update path.
//
// Listings order by created_at DESC with id ASC as tie-break, so
// records written within the same timestamp keep insertion order.
type BlockHistoryRepository interface {
	Create(ctx context.Context, record *entity.BlockHistory) error
	// FindByIdForPage returns nil when the record does not exist, is
	// owned by another user, or belongs to a different page. The page
	// cross-check folds into not-found on purpose.
	FindByIdForPage(ctx context.Context, historyId int64, pageId, userId uuid.UUID) (*entity.BlockHistory, error)
	// FindPageHistory returns records joined with the referenced block's
	// current type and the page title for display.
	FindPageHistory(ctx context.Context, pageId, userId uuid.UUID, limit, offset int) ([]*entity.BlockHistoryDetail, error)
	// FindTimeline returns records carrying a non-empty diff or snapshot
	// payload, newest first, capped at limit.
	FindTimeline(ctx context.Context, pageId, userId uuid.UUID, limit int) ([]*entity.BlockHistoryDetail, error)
	// FindSnapshots returns only snapshot-operation records, newest first.
	FindSnapshots(ctx context.Context, pageId, userId uuid.UUID, limit int) ([]*entity.BlockHistory, error)
	CountByPage(ctx context.Context, pageId, userId uuid.UUID) (int64, error)
	// DeleteOlderThan removes records created strictly before cutoff,
	// optionally scoped to one owner, and returns the rows removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time, userId *uuid.UUID) (int64, error)
}
