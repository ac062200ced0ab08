package dto

import (
	"time"

	"blocknote-be/internal/entity"

	"github.com/google/uuid"
)

// RecordHistoryMessage is the payload published on the history topic
// after a primary mutation commits. The consumer persists it as a
// BlockHistory row.
type RecordHistoryMessage struct {
	UserId    uuid.UUID              `json:"user_id"`
	PageId    uuid.UUID              `json:"page_id"`
	BlockId   *uuid.UUID             `json:"block_id,omitempty"`
	Operation string                 `json:"operation"`
	BlockData map[string]interface{} `json:"block_data,omitempty"`
	Snapshot  *entity.PageSnapshot   `json:"snapshot,omitempty"`
	CreatedBy uuid.UUID              `json:"created_by"`
}

type PageHistoryEntry struct {
	Id           int64                  `json:"id"`
	Operation    string                 `json:"operation"`
	BlockId      *uuid.UUID             `json:"block_id"`
	BlockType    *string                `json:"block_type"`
	PageTitle    string                 `json:"page_title"`
	BlockData    map[string]interface{} `json:"block_data"`
	SnapshotData *entity.PageSnapshot   `json:"snapshot_data"`
	CreatedAt    time.Time              `json:"created_at"`
}

type PageHistoryResponse struct {
	History    []*PageHistoryEntry `json:"history"`
	Total      int64               `json:"total"`
	Page       int                 `json:"page"`
	Limit      int                 `json:"limit"`
	TotalPages int                 `json:"total_pages"`
}

type TimelineEntry struct {
	Id             int64      `json:"id"`
	Timestamp      time.Time  `json:"timestamp"`
	Operation      string     `json:"operation"`
	OperationText  string     `json:"operation_text"`
	BlockId        *uuid.UUID `json:"block_id"`
	BlockType      *string    `json:"block_type"`
	PreviewContent string     `json:"preview_content"`
	Preview        []string   `json:"preview"`
	HasSnapshot    bool       `json:"has_snapshot"`
	HasBlockData   bool       `json:"has_block_data"`
}

type PageAtHistoryPage struct {
	Id         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Icon       string    `json:"icon"`
	CoverImage *string   `json:"cover_image"`
}

type PageAtHistoryResponse struct {
	Page           PageAtHistoryPage      `json:"page"`
	Blocks         []entity.BlockSnapshot `json:"blocks"`
	IsHistorical   bool                   `json:"is_historical"`
	HistoryId      int64                  `json:"history_id"`
	SnapshotTime   time.Time              `json:"snapshot_time"`
	Operation      string                 `json:"operation"`
	IsFullSnapshot bool                   `json:"is_full_snapshot"`
}

type SnapshotEntry struct {
	Id          int64     `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Operation   string    `json:"operation"`
	Preview     []string  `json:"preview"`
	BlockCount  int       `json:"block_count"`
	ChangeCount int       `json:"change_count"`
}

type CleanupHistoryResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}

// ActivityEvent is pushed to the owner's websocket clients after a
// history record lands.
type ActivityEvent struct {
	Type       string    `json:"type"`
	PageId     uuid.UUID `json:"page_id"`
	HistoryId  int64     `json:"history_id"`
	Operation  string    `json:"operation"`
	OccurredAt time.Time `json:"occurred_at"`
}
