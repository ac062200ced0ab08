package mapper

import (
	"time"

	"blocknote-be/internal/entity"
	"blocknote-be/internal/model"
)

type BlockMapper struct{}

func NewBlockMapper() *BlockMapper {
	return &BlockMapper{}
}

func (m *BlockMapper) ToEntity(b *model.Block) *entity.Block {
	if b == nil {
		return nil
	}

	var updatedAt *time.Time
	if !b.UpdatedAt.IsZero() {
		t := b.UpdatedAt
		updatedAt = &t
	}

	return &entity.Block{
		Id:         b.Id,
		UserId:     b.UserId,
		PageId:     b.PageId,
		Type:       b.Type,
		Properties: decodeJSONMap(b.Properties),
		Format:     decodeJSONMap(b.Format),
		ParentId:   b.ParentId,
		OrderIndex: b.OrderIndex,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *BlockMapper) ToModel(b *entity.Block) *model.Block {
	if b == nil {
		return nil
	}

	var updatedAt time.Time
	if b.UpdatedAt != nil {
		updatedAt = *b.UpdatedAt
	}

	return &model.Block{
		Id:         b.Id,
		UserId:     b.UserId,
		PageId:     b.PageId,
		Type:       b.Type,
		Properties: encodeJSONMap(b.Properties),
		Format:     encodeJSONMap(b.Format),
		ParentId:   b.ParentId,
		OrderIndex: b.OrderIndex,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *BlockMapper) ToEntities(blocks []*model.Block) []*entity.Block {
	entities := make([]*entity.Block, len(blocks))
	for i, b := range blocks {
		entities[i] = m.ToEntity(b)
	}
	return entities
}

func (m *BlockMapper) ToModels(blocks []*entity.Block) []*model.Block {
	models := make([]*model.Block, len(blocks))
	for i, b := range blocks {
		models[i] = m.ToModel(b)
	}
	return models
}
