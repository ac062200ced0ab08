package service

import (
	"context"
	"time"

	"blocknote-be/internal/dto"
	"blocknote-be/internal/entity"
	"blocknote-be/internal/pkg/logger"
	"blocknote-be/internal/repository/specification"
	"blocknote-be/internal/repository/unitofwork"
	"blocknote-be/pkg/events"
	pkgNats "blocknote-be/pkg/nats"

	"github.com/google/uuid"
)

type IBlockService interface {
	GetPageBlocks(ctx context.Context, userId, pageId uuid.UUID) ([]*dto.BlockResponse, error)
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateBlockRequest) (*dto.BlockResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateBlockRequest) (*dto.BlockResponse, error)
	Delete(ctx context.Context, userId, blockId uuid.UUID) error
	SaveBlocks(ctx context.Context, userId uuid.UUID, req *dto.SaveBlocksRequest) (*dto.SaveBlocksResponse, error)
	Reorder(ctx context.Context, userId uuid.UUID, req *dto.ReorderBlocksRequest) error
}

type blockService struct {
	uowFactory     unitofwork.RepositoryFactory
	recorder       IHistoryRecorder
	eventPublisher *pkgNats.Publisher
	logger         logger.ILogger
}

func NewBlockService(
	uowFactory unitofwork.RepositoryFactory,
	recorder IHistoryRecorder,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IBlockService {
	return &blockService{
		uowFactory:     uowFactory,
		recorder:       recorder,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *blockService) GetPageBlocks(ctx context.Context, userId, pageId uuid.UUID) ([]*dto.BlockResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if pageId == uuid.Nil {
		return nil, validationError("page id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.ensurePageOwned(ctx, uow, userId, pageId); err != nil {
		return nil, err
	}

	blocks, err := uow.BlockRepository().FindAll(ctx,
		specification.ByPage{PageID: pageId},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "order_index"},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.BlockResponse, len(blocks))
	for i, b := range blocks {
		responses[i] = blockToResponse(b)
	}
	return responses, nil
}

func (s *blockService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateBlockRequest) (*dto.BlockResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if req.PageId == uuid.Nil {
		return nil, validationError("page id is required")
	}
	if req.Type == "" {
		return nil, validationError("block type is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.ensurePageOwned(ctx, uow, userId, req.PageId); err != nil {
		return nil, err
	}

	orderIndex := 0
	if req.OrderIndex != nil {
		orderIndex = *req.OrderIndex
	} else {
		// Append after the existing blocks when no position was given.
		count, err := uow.BlockRepository().Count(ctx,
			specification.ByPage{PageID: req.PageId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, err
		}
		orderIndex = int(count)
	}

	block := &entity.Block{
		Id:         uuid.New(),
		UserId:     userId,
		PageId:     req.PageId,
		Type:       req.Type,
		Properties: req.Properties,
		Format:     req.Format,
		ParentId:   req.ParentId,
		OrderIndex: orderIndex,
		CreatedAt:  time.Now(),
	}

	if err := uow.BlockRepository().Create(ctx, block); err != nil {
		return nil, err
	}

	s.logger.Info("BlockService", "Block created", map[string]interface{}{
		"block_id": block.Id, "page_id": block.PageId, "type": block.Type,
	})

	s.recorder.RecordBlockCreate(ctx, userId, req.PageId, block)
	s.publishEvent(ctx, "BLOCK_CREATED", map[string]interface{}{
		"block_id": block.Id.String(), "page_id": block.PageId.String(), "user_id": userId.String(),
	})

	return blockToResponse(block), nil
}

func (s *blockService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateBlockRequest) (*dto.BlockResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if req.Id == uuid.Nil {
		return nil, validationError("block id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	block, err := uow.BlockRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if block == nil {
		return nil, notFoundError("block")
	}

	// Keep the pre-update state for the history diff before merging
	// the requested changes in.
	oldBlock := *block

	if req.Type != nil {
		block.Type = *req.Type
	}
	if req.Properties != nil {
		block.Properties = req.Properties
	}
	if req.Format != nil {
		block.Format = req.Format
	}
	if req.OrderIndex != nil {
		block.OrderIndex = *req.OrderIndex
	}
	now := time.Now()
	block.UpdatedAt = &now

	if err := uow.BlockRepository().Update(ctx, block); err != nil {
		return nil, err
	}

	s.recorder.RecordBlockUpdate(ctx, userId, block.PageId, &oldBlock, block)

	return blockToResponse(block), nil
}

// Delete removes a block and writes its delete history entry in the
// same transaction. The history row holds the only remaining copy of
// the deleted content, so either both land or neither does.
func (s *blockService) Delete(ctx context.Context, userId, blockId uuid.UUID) error {
	if userId == uuid.Nil {
		return validationError("user id is required")
	}
	if blockId == uuid.Nil {
		return validationError("block id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	block, err := uow.BlockRepository().FindOne(ctx,
		specification.ByID{ID: blockId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if block == nil {
		return notFoundError("block")
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.BlockRepository().Delete(ctx, block.Id); err != nil {
		return err
	}

	record := &entity.BlockHistory{
		UserId:    userId,
		PageId:    block.PageId,
		BlockId:   &block.Id,
		Operation: entity.HistoryOperationDelete,
		BlockData: BlockDataPayload(block),
		CreatedBy: userId,
		CreatedAt: time.Now(),
	}
	if err := uow.BlockHistoryRepository().Create(ctx, record); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Info("BlockService", "Block deleted", map[string]interface{}{
		"block_id": block.Id, "page_id": block.PageId, "history_id": record.Id,
	})

	s.publishEvent(ctx, "BLOCK_DELETED", map[string]interface{}{
		"block_id": block.Id.String(), "page_id": block.PageId.String(), "user_id": userId.String(),
	})

	return nil
}

// SaveBlocks replaces a page's whole block set with the posted array.
// Order index comes from array position. When SaveHistory is set, a
// full page snapshot is captured after the commit.
func (s *blockService) SaveBlocks(ctx context.Context, userId uuid.UUID, req *dto.SaveBlocksRequest) (*dto.SaveBlocksResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if req.PageId == uuid.Nil {
		return nil, validationError("page id is required")
	}
	if req.Blocks == nil {
		return nil, validationError("blocks array is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.ensurePageOwned(ctx, uow, userId, req.PageId); err != nil {
		return nil, err
	}

	previous, err := uow.BlockRepository().FindAll(ctx,
		specification.ByPage{PageID: req.PageId},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "order_index"},
	)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.BlockRepository().DeleteByPageId(ctx, req.PageId); err != nil {
		return nil, err
	}

	saved := make([]*entity.Block, len(req.Blocks))
	for i, in := range req.Blocks {
		block := &entity.Block{
			Id:         uuid.New(),
			UserId:     userId,
			PageId:     req.PageId,
			Type:       in.Type,
			Properties: in.Properties,
			Format:     in.Format,
			ParentId:   in.ParentId,
			OrderIndex: i,
			CreatedAt:  time.Now(),
		}
		if err := uow.BlockRepository().Create(ctx, block); err != nil {
			return nil, err
		}
		saved[i] = block
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("BlockService", "Page blocks saved", map[string]interface{}{
		"page_id": req.PageId, "count": len(saved), "save_history": req.SaveHistory,
	})

	if req.SaveHistory {
		s.recorder.RecordPageSnapshot(ctx, userId, req.PageId, previous, saved)
	}
	s.publishEvent(ctx, "BLOCKS_SAVED", map[string]interface{}{
		"page_id": req.PageId.String(), "user_id": userId.String(), "count": len(saved),
	})

	responses := make([]*dto.BlockResponse, len(saved))
	for i, b := range saved {
		responses[i] = blockToResponse(b)
	}
	return &dto.SaveBlocksResponse{Count: len(saved), Blocks: responses}, nil
}

func (s *blockService) Reorder(ctx context.Context, userId uuid.UUID, req *dto.ReorderBlocksRequest) error {
	if userId == uuid.Nil {
		return validationError("user id is required")
	}
	if req.PageId == uuid.Nil {
		return validationError("page id is required")
	}
	if len(req.BlockIds) == 0 {
		return validationError("block ids are required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := s.ensurePageOwned(ctx, uow, userId, req.PageId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	for i, blockId := range req.BlockIds {
		if err := uow.BlockRepository().UpdateOrderIndex(ctx, req.PageId, blockId, i); err != nil {
			return err
		}
	}

	return uow.Commit()
}

func (s *blockService) ensurePageOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, pageId uuid.UUID) error {
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

func (s *blockService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	event := events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("BlockService", "Failed to publish event", map[string]interface{}{
			"event_type": eventType, "error": err.Error(),
		})
	}
}

func blockToResponse(b *entity.Block) *dto.BlockResponse {
	props := b.Properties
	if props == nil {
		props = map[string]interface{}{}
	}
	format := b.Format
	if format == nil {
		format = map[string]interface{}{}
	}
	return &dto.BlockResponse{
		Id:         b.Id,
		PageId:     b.PageId,
		Type:       b.Type,
		Properties: props,
		Format:     format,
		ParentId:   b.ParentId,
		OrderIndex: b.OrderIndex,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}
