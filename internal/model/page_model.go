package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Page struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_pages_user_slug"`
	Title       string         `gorm:"type:varchar(255);not null"`
	Slug        string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_pages_user_slug"`
	Content     datatypes.JSON `gorm:"type:jsonb"`
	Icon        string         `gorm:"type:varchar(64)"`
	CoverImage  *string        `gorm:"type:varchar(512)"`
	ParentId    *uuid.UUID     `gorm:"type:uuid;index"`
	IsPublished bool           `gorm:"not null;default:false"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (Page) TableName() string {
	return "pages"
}
