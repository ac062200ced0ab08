package entity

import (
	"time"

	"github.com/google/uuid"
)

type Block struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	PageId     uuid.UUID
	Type       string
	Properties map[string]interface{}
	Format     map[string]interface{}
	ParentId   *uuid.UUID
	OrderIndex int
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
