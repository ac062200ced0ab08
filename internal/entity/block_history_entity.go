package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	HistoryOperationCreate   = "create"
	HistoryOperationUpdate   = "update"
	HistoryOperationDelete   = "delete"
	HistoryOperationSnapshot = "snapshot"
)

// BlockSnapshot is a block as it appeared at a point in time. It is the
// unit stored inside snapshot payloads and diff payloads.
type BlockSnapshot struct {
	Id         string                 `json:"id,omitempty"`
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties"`
	Format     map[string]interface{} `json:"format"`
	OrderIndex int                    `json:"order_index"`
}

// PageSnapshot is the full ordered block array of a page at save time.
type PageSnapshot struct {
	PageId      uuid.UUID       `json:"page_id"`
	UserId      uuid.UUID       `json:"user_id"`
	Blocks      []BlockSnapshot `json:"blocks"`
	SavedAt     time.Time       `json:"saved_at"`
	ChangeCount int             `json:"change_count,omitempty"`
}

// HasSnapshot reports whether a snapshot payload was stored at all.
// Records written by single-block operations have none. A saved empty
// page still carries a snapshot with a zero-length block array, and it
// replays verbatim like any other snapshot.
func (s *PageSnapshot) HasSnapshot() bool {
	return s != nil && s.Blocks != nil
}

// BlockHistory is one append-only audit record of a page's block set.
// It is written once and never mutated; only the retention cleanup (or
// a page cascade delete) removes it. The id is a sequential integer so
// equal-timestamp records keep their insertion order.
type BlockHistory struct {
	Id           int64
	UserId       uuid.UUID
	PageId       uuid.UUID
	BlockId      *uuid.UUID
	Operation    string
	BlockData    map[string]interface{}
	SnapshotData *PageSnapshot
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
}

// BlockHistoryDetail is a history record joined with current display
// metadata (the referenced block's type and the page title).
type BlockHistoryDetail struct {
	BlockHistory
	BlockType *string
	PageTitle string
}
