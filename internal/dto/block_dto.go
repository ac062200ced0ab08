package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateBlockRequest struct {
	PageId     uuid.UUID              `json:"page_id" validate:"required"`
	Type       string                 `json:"type" validate:"required"`
	Properties map[string]interface{} `json:"properties"`
	Format     map[string]interface{} `json:"format"`
	ParentId   *uuid.UUID             `json:"parent_id"`
	OrderIndex *int                   `json:"order_index"`
}

type BlockResponse struct {
	Id         uuid.UUID              `json:"id"`
	PageId     uuid.UUID              `json:"page_id"`
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Format     map[string]interface{} `json:"format"`
	ParentId   *uuid.UUID             `json:"parent_id"`
	OrderIndex int                    `json:"order_index"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  *time.Time             `json:"updated_at"`
}

type UpdateBlockRequest struct {
	Id         uuid.UUID
	Type       *string                `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Format     map[string]interface{} `json:"format"`
	OrderIndex *int                   `json:"order_index"`
}

// BlockInput is one block of a bulk save payload. Ids are optional:
// the save path replaces the whole set and order comes from array
// position, not from the payload.
type BlockInput struct {
	Type       string                 `json:"type" validate:"required"`
	Properties map[string]interface{} `json:"properties"`
	Format     map[string]interface{} `json:"format"`
	ParentId   *uuid.UUID             `json:"parent_id"`
}

type SaveBlocksRequest struct {
	PageId      uuid.UUID
	Blocks      []BlockInput `json:"blocks" validate:"required"`
	SaveHistory bool         `json:"save_history"`
}

type SaveBlocksResponse struct {
	Count  int              `json:"count"`
	Blocks []*BlockResponse `json:"blocks"`
}

type ReorderBlocksRequest struct {
	PageId   uuid.UUID
	BlockIds []uuid.UUID `json:"block_ids" validate:"required"`
}
