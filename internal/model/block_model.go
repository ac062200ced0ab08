package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Block struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	PageId     uuid.UUID      `gorm:"type:uuid;not null;index:idx_blocks_page_order,priority:1"`
	Type       string         `gorm:"type:varchar(64);not null"`
	Properties datatypes.JSON `gorm:"type:jsonb"`
	Format     datatypes.JSON `gorm:"type:jsonb"`
	ParentId   *uuid.UUID     `gorm:"type:uuid"`
	OrderIndex int            `gorm:"not null;default:0;index:idx_blocks_page_order,priority:2"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`

	Page *Page `gorm:"foreignKey:PageId;constraint:OnDelete:CASCADE"`
}

func (Block) TableName() string {
	return "blocks"
}
