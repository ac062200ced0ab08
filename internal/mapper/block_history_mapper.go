package mapper

import (
	"encoding/json"

	"blocknote-be/internal/entity"
	"blocknote-be/internal/model"

	"gorm.io/datatypes"
)

type BlockHistoryMapper struct{}

func NewBlockHistoryMapper() *BlockHistoryMapper {
	return &BlockHistoryMapper{}
}

func (m *BlockHistoryMapper) ToEntity(h *model.BlockHistory) *entity.BlockHistory {
	if h == nil {
		return nil
	}

	return &entity.BlockHistory{
		Id:           h.Id,
		UserId:       h.UserId,
		PageId:       h.PageId,
		BlockId:      h.BlockId,
		Operation:    h.Operation,
		BlockData:    decodeJSONMap(h.BlockData),
		SnapshotData: decodeSnapshot(h.SnapshotData),
		CreatedBy:    h.CreatedBy,
		CreatedAt:    h.CreatedAt,
	}
}

func (m *BlockHistoryMapper) ToModel(h *entity.BlockHistory) *model.BlockHistory {
	if h == nil {
		return nil
	}

	return &model.BlockHistory{
		Id:           h.Id,
		UserId:       h.UserId,
		PageId:       h.PageId,
		BlockId:      h.BlockId,
		Operation:    h.Operation,
		BlockData:    encodeJSONMap(h.BlockData),
		SnapshotData: encodeSnapshot(h.SnapshotData),
		CreatedBy:    h.CreatedBy,
		CreatedAt:    h.CreatedAt,
	}
}

func (m *BlockHistoryMapper) ToEntities(records []*model.BlockHistory) []*entity.BlockHistory {
	entities := make([]*entity.BlockHistory, len(records))
	for i, h := range records {
		entities[i] = m.ToEntity(h)
	}
	return entities
}

// decodeSnapshot returns nil for absent or malformed snapshot payloads
// so "has a snapshot" is a simple nil check upstream. A nil Blocks
// slice means no snapshot was written: the {} placeholder stored for
// diff records unmarshals without a blocks key, while a real snapshot
// always carries one, even for a page saved with zero blocks.
func decodeSnapshot(data datatypes.JSON) *entity.PageSnapshot {
	if len(data) == 0 {
		return nil
	}
	var snap entity.PageSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil
	}
	if snap.Blocks == nil {
		return nil
	}
	return &snap
}

func encodeSnapshot(snap *entity.PageSnapshot) datatypes.JSON {
	if snap == nil {
		return datatypes.JSON([]byte("{}"))
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return datatypes.JSON([]byte("{}"))
	}
	return datatypes.JSON(raw)
}
