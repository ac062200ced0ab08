package entity

import (
	"time"

	"github.com/google/uuid"
)

type Page struct {
	Id          uuid.UUID
	UserId      uuid.UUID
	Title       string
	Slug        string
	Content     map[string]interface{}
	Icon        string
	CoverImage  *string
	ParentId    *uuid.UUID
	IsPublished bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
