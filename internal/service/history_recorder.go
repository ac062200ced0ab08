package service

import (
	"context"
	"encoding/json"
	"time"

	"blocknote-be/internal/dto"
	"blocknote-be/internal/entity"
	"blocknote-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// IHistoryRecorder captures block mutations as history jobs published
// AFTER the primary transaction has committed. Publishing failures are
// logged and swallowed: history capture for create/update/snapshot is
// best-effort and must never fail the mutation that triggered it.
//
// Delete records are NOT routed through here; the block service writes
// them synchronously inside the delete transaction because they are
// the only remaining copy of the deleted content.
type IHistoryRecorder interface {
	RecordBlockCreate(ctx context.Context, userId, pageId uuid.UUID, block *entity.Block)
	RecordBlockUpdate(ctx context.Context, userId, pageId uuid.UUID, oldBlock, newBlock *entity.Block)
	RecordPageSnapshot(ctx context.Context, userId, pageId uuid.UUID, previous, current []*entity.Block)
}

type historyRecorder struct {
	pubSub    *gochannel.GoChannel
	topicName string
	logger    logger.ILogger
}

func NewHistoryRecorder(pubSub *gochannel.GoChannel, topicName string, log logger.ILogger) IHistoryRecorder {
	return &historyRecorder{
		pubSub:    pubSub,
		topicName: topicName,
		logger:    log,
	}
}

func (r *historyRecorder) RecordBlockCreate(ctx context.Context, userId, pageId uuid.UUID, block *entity.Block) {
	r.publish(&dto.RecordHistoryMessage{
		UserId:    userId,
		PageId:    pageId,
		BlockId:   &block.Id,
		Operation: entity.HistoryOperationCreate,
		BlockData: BlockDataPayload(block),
		CreatedBy: userId,
	})
}

func (r *historyRecorder) RecordBlockUpdate(ctx context.Context, userId, pageId uuid.UUID, oldBlock, newBlock *entity.Block) {
	r.publish(&dto.RecordHistoryMessage{
		UserId:    userId,
		PageId:    pageId,
		BlockId:   &newBlock.Id,
		Operation: entity.HistoryOperationUpdate,
		BlockData: map[string]interface{}{
			"old": BlockDataPayload(oldBlock),
			"new": BlockDataPayload(newBlock),
		},
		CreatedBy: userId,
	})
}

func (r *historyRecorder) RecordPageSnapshot(ctx context.Context, userId, pageId uuid.UUID, previous, current []*entity.Block) {
	r.publish(&dto.RecordHistoryMessage{
		UserId:    userId,
		PageId:    pageId,
		Operation: entity.HistoryOperationSnapshot,
		Snapshot: &entity.PageSnapshot{
			PageId:      pageId,
			UserId:      userId,
			Blocks:      ToBlockSnapshots(current),
			SavedAt:     time.Now(),
			ChangeCount: countChangedBlocks(previous, current),
		},
		CreatedBy: userId,
	})
}

func (r *historyRecorder) publish(payload *dto.RecordHistoryMessage) {
	msgJson, err := json.Marshal(payload)
	if err != nil {
		r.logger.Warn("HistoryRecorder", "Failed to marshal history job", map[string]interface{}{
			"page_id": payload.PageId, "operation": payload.Operation, "error": err.Error(),
		})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), msgJson)
	if err := r.pubSub.Publish(r.topicName, msg); err != nil {
		// History capture is best-effort; the primary mutation already
		// committed and its result must still reach the caller.
		r.logger.Warn("HistoryRecorder", "Failed to publish history job", map[string]interface{}{
			"page_id": payload.PageId, "operation": payload.Operation, "error": err.Error(),
		})
	}
}

// BlockDataPayload flattens a block into the shape stored in the
// block_data column.
func BlockDataPayload(b *entity.Block) map[string]interface{} {
	props := b.Properties
	if props == nil {
		props = map[string]interface{}{}
	}
	format := b.Format
	if format == nil {
		format = map[string]interface{}{}
	}
	return map[string]interface{}{
		"id":          b.Id.String(),
		"page_id":     b.PageId.String(),
		"type":        b.Type,
		"properties":  props,
		"format":      format,
		"order_index": b.OrderIndex,
	}
}

// ToBlockSnapshots converts live blocks into their snapshot form,
// preserving array order.
func ToBlockSnapshots(blocks []*entity.Block) []entity.BlockSnapshot {
	snapshots := make([]entity.BlockSnapshot, len(blocks))
	for i, b := range blocks {
		props := b.Properties
		if props == nil {
			props = map[string]interface{}{}
		}
		format := b.Format
		if format == nil {
			format = map[string]interface{}{}
		}
		snapshots[i] = entity.BlockSnapshot{
			Id:         b.Id.String(),
			Type:       b.Type,
			Properties: props,
			Format:     format,
			OrderIndex: b.OrderIndex,
		}
	}
	return snapshots
}

// countChangedBlocks compares the new block array against the previous
// one positionally and counts positions that differ. A cheap measure
// for timeline display, not a real diff.
func countChangedBlocks(previous, current []*entity.Block) int {
	changed := 0
	for i, b := range current {
		if i >= len(previous) {
			changed++
			continue
		}
		if !sameBlockContent(previous[i], b) {
			changed++
		}
	}
	if len(previous) > len(current) {
		changed += len(previous) - len(current)
	}
	return changed
}

func sameBlockContent(a, b *entity.Block) bool {
	if a.Type != b.Type {
		return false
	}
	aProps, _ := json.Marshal(a.Properties)
	bProps, _ := json.Marshal(b.Properties)
	if string(aProps) != string(bProps) {
		return false
	}
	aFormat, _ := json.Marshal(a.Format)
	bFormat, _ := json.Marshal(b.Format)
	return string(aFormat) == string(bFormat)
}
