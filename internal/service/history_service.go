package service

import (
	"context"

	"blocknote-be/internal/dto"
	"blocknote-be/internal/entity"
	"blocknote-be/internal/pkg/logger"
	"blocknote-be/internal/repository/specification"
	"blocknote-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
	defaultTimelineLimit   = 50
	defaultSnapshotLimit   = 10
	timelinePreviewBlocks  = 3
)

type IHistoryService interface {
	GetPageHistory(ctx context.Context, userId, pageId uuid.UUID, page, limit int) (*dto.PageHistoryResponse, error)
	GetTimelineEntries(ctx context.Context, userId, pageId uuid.UUID, limit int) ([]*dto.TimelineEntry, error)
	GetPageAtHistory(ctx context.Context, userId, pageId uuid.UUID, historyId int64) (*dto.PageAtHistoryResponse, error)
	GetRecentSnapshots(ctx context.Context, userId, pageId uuid.UUID, limit int) ([]*dto.SnapshotEntry, error)
}

type historyService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewHistoryService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IHistoryService {
	return &historyService{
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (s *historyService) GetPageHistory(ctx context.Context, userId, pageId uuid.UUID, page, limit int) (*dto.PageHistoryResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if pageId == uuid.Nil {
		return nil, validationError("page id is required")
	}
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultHistoryPageSize
	}
	if limit > maxHistoryPageSize {
		limit = maxHistoryPageSize
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.ensurePageOwned(ctx, uow, userId, pageId); err != nil {
		return nil, err
	}

	total, err := uow.BlockHistoryRepository().CountByPage(ctx, pageId, userId)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * limit
	records, err := uow.BlockHistoryRepository().FindPageHistory(ctx, pageId, userId, limit, offset)
	if err != nil {
		return nil, err
	}

	entries := make([]*dto.PageHistoryEntry, len(records))
	for i, r := range records {
		entries[i] = &dto.PageHistoryEntry{
			Id:           r.Id,
			Operation:    r.Operation,
			BlockId:      r.BlockId,
			BlockType:    r.BlockType,
			PageTitle:    r.PageTitle,
			BlockData:    r.BlockData,
			SnapshotData: r.SnapshotData,
			CreatedAt:    r.CreatedAt,
		}
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &dto.PageHistoryResponse{
		History:    entries,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *historyService) GetTimelineEntries(ctx context.Context, userId, pageId uuid.UUID, limit int) ([]*dto.TimelineEntry, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if pageId == uuid.Nil {
		return nil, validationError("page id is required")
	}
	if limit <= 0 {
		limit = defaultTimelineLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.ensurePageOwned(ctx, uow, userId, pageId); err != nil {
		return nil, err
	}

	records, err := uow.BlockHistoryRepository().FindTimeline(ctx, pageId, userId, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]*dto.TimelineEntry, len(records))
	for i, r := range records {
		entries[i] = buildTimelineEntry(r)
	}
	return entries, nil
}

// GetPageAtHistory reconstructs how a page looked at one history
// record. Snapshot records replay exactly; diff-only records fall
// back to the page's current live blocks, flagged via IsFullSnapshot
// so callers can tell reconstruction from approximation.
func (s *historyService) GetPageAtHistory(ctx context.Context, userId, pageId uuid.UUID, historyId int64) (*dto.PageAtHistoryResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if pageId == uuid.Nil {
		return nil, validationError("page id is required")
	}
	if historyId <= 0 {
		return nil, validationError("history id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	page, err := uow.PageRepository().FindOne(ctx,
		specification.ByID{ID: pageId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, notFoundError("page")
	}

	record, err := uow.BlockHistoryRepository().FindByIdForPage(ctx, historyId, pageId, userId)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, notFoundError("history record")
	}

	var blocks []entity.BlockSnapshot
	isFullSnapshot := false
	if record.SnapshotData.HasSnapshot() {
		// Replay verbatim, including the zero-block array of a page
		// that was saved empty.
		blocks = record.SnapshotData.Blocks
		isFullSnapshot = true
	} else {
		// No snapshot to replay; show the current state instead of
		// failing the view.
		live, err := uow.BlockRepository().FindAll(ctx,
			specification.ByPage{PageID: pageId},
			specification.UserOwnedBy{UserID: userId},
			specification.OrderBy{Field: "order_index"},
		)
		if err != nil {
			return nil, err
		}
		blocks = ToBlockSnapshots(live)
	}

	if blocks == nil {
		blocks = []entity.BlockSnapshot{}
	}

	return &dto.PageAtHistoryResponse{
		Page: dto.PageAtHistoryPage{
			Id:         page.Id,
			Title:      page.Title,
			Icon:       page.Icon,
			CoverImage: page.CoverImage,
		},
		Blocks:         blocks,
		IsHistorical:   true,
		HistoryId:      record.Id,
		SnapshotTime:   record.CreatedAt,
		Operation:      record.Operation,
		IsFullSnapshot: isFullSnapshot,
	}, nil
}

func (s *historyService) GetRecentSnapshots(ctx context.Context, userId, pageId uuid.UUID, limit int) ([]*dto.SnapshotEntry, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if pageId == uuid.Nil {
		return nil, validationError("page id is required")
	}
	if limit <= 0 {
		limit = defaultSnapshotLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.ensurePageOwned(ctx, uow, userId, pageId); err != nil {
		return nil, err
	}

	records, err := uow.BlockHistoryRepository().FindSnapshots(ctx, pageId, userId, limit)
	if err != nil {
		return nil, err
	}

	entries := make([]*dto.SnapshotEntry, len(records))
	for i, r := range records {
		entry := &dto.SnapshotEntry{
			Id:        r.Id,
			Timestamp: r.CreatedAt,
			Operation: r.Operation,
			Preview:   []string{},
		}
		if r.SnapshotData != nil {
			entry.BlockCount = len(r.SnapshotData.Blocks)
			entry.ChangeCount = r.SnapshotData.ChangeCount
			entry.Preview = snapshotBlockTypes(r.SnapshotData.Blocks)
		}
		entries[i] = entry
	}
	return entries, nil
}

func (s *historyService) ensurePageOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, pageId uuid.UUID) error {
	page, err := uow.PageRepository().FindOne(ctx,
		specification.ByID{ID: pageId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if page == nil {
		return notFoundError("page")
	}
	return nil
}

func buildTimelineEntry(r *entity.BlockHistoryDetail) *dto.TimelineEntry {
	entry := &dto.TimelineEntry{
		Id:            r.Id,
		Timestamp:     r.CreatedAt,
		Operation:     r.Operation,
		OperationText: operationText(r.Operation),
		BlockId:       r.BlockId,
		BlockType:     r.BlockType,
		Preview:       []string{},
		HasSnapshot:   r.SnapshotData.HasSnapshot(),
		HasBlockData:  len(r.BlockData) > 0,
	}

	if r.SnapshotData.HasSnapshot() {
		if blocks := r.SnapshotData.Blocks; len(blocks) > 0 {
			entry.PreviewContent = titleText(blocks[0].Properties)
			entry.Preview = snapshotBlockTypes(blocks)
		}
		return entry
	}

	props := changedBlockProperties(r.BlockData)
	entry.PreviewContent = titleText(props)
	if r.BlockType != nil {
		entry.Preview = []string{*r.BlockType}
	} else if t, ok := changedBlockType(r.BlockData); ok {
		entry.Preview = []string{t}
	}
	return entry
}

func operationText(operation string) string {
	switch operation {
	case entity.HistoryOperationCreate:
		return "Created"
	case entity.HistoryOperationDelete:
		return "Deleted"
	case entity.HistoryOperationSnapshot:
		return "Saved"
	default:
		return "Updated"
	}
}

// titleText walks properties.title[0][0], the conventional location of
// a block's display text. Any missing or oddly shaped level yields "".
func titleText(props map[string]interface{}) string {
	title, ok := props["title"].([]interface{})
	if !ok || len(title) == 0 {
		return ""
	}
	first, ok := title[0].([]interface{})
	if !ok || len(first) == 0 {
		return ""
	}
	text, _ := first[0].(string)
	return text
}

// changedBlockProperties digs the most relevant property map out of a
// block_data payload: the post-change state for updates, the block
// itself for creates and deletes.
func changedBlockProperties(blockData map[string]interface{}) map[string]interface{} {
	for _, key := range []string{"new", "old"} {
		if nested, ok := blockData[key].(map[string]interface{}); ok {
			if props, ok := nested["properties"].(map[string]interface{}); ok {
				return props
			}
		}
	}
	if props, ok := blockData["properties"].(map[string]interface{}); ok {
		return props
	}
	return map[string]interface{}{}
}

func changedBlockType(blockData map[string]interface{}) (string, bool) {
	for _, key := range []string{"new", "old"} {
		if nested, ok := blockData[key].(map[string]interface{}); ok {
			if t, ok := nested["type"].(string); ok && t != "" {
				return t, true
			}
		}
	}
	if t, ok := blockData["type"].(string); ok && t != "" {
		return t, true
	}
	return "", false
}

func snapshotBlockTypes(blocks []entity.BlockSnapshot) []string {
	n := len(blocks)
	if n > timelinePreviewBlocks {
		n = timelinePreviewBlocks
	}
	types := make([]string, n)
	for i := 0; i < n; i++ {
		types[i] = blocks[i].Type
	}
	return types
}
