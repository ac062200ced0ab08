package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// BlockHistory rows are append-only. The bigint key preserves insertion
// order for records created within the same timestamp tick.
type BlockHistory struct {
	Id           int64          `gorm:"primaryKey;autoIncrement"`
	UserId       uuid.UUID      `gorm:"type:uuid;not null;index"`
	PageId       uuid.UUID      `gorm:"type:uuid;not null;index:idx_block_history_page_created,priority:1"`
	BlockId      *uuid.UUID     `gorm:"type:uuid"`
	Operation    string         `gorm:"type:varchar(16);not null;default:'update'"`
	BlockData    datatypes.JSON `gorm:"type:jsonb"`
	SnapshotData datatypes.JSON `gorm:"type:jsonb"`
	CreatedBy    uuid.UUID      `gorm:"type:uuid;not null"`
	CreatedAt    time.Time      `gorm:"autoCreateTime;index:idx_block_history_page_created,priority:2,sort:desc"`

	Page *Page `gorm:"foreignKey:PageId;constraint:OnDelete:CASCADE"`
}

func (BlockHistory) TableName() string {
	return "block_history"
}
