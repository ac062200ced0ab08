package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePageRequest struct {
	Title      string                 `json:"title"`
	Content    map[string]interface{} `json:"content"`
	Icon       string                 `json:"icon"`
	CoverImage *string                `json:"cover_image"`
	ParentId   *uuid.UUID             `json:"parent_id"`
}

type PageResponse struct {
	Id          uuid.UUID              `json:"id"`
	Title       string                 `json:"title"`
	Slug        string                 `json:"slug"`
	Content     map[string]interface{} `json:"content"`
	Icon        string                 `json:"icon"`
	CoverImage  *string                `json:"cover_image"`
	ParentId    *uuid.UUID             `json:"parent_id"`
	IsPublished bool                   `json:"is_published"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   *time.Time             `json:"updated_at"`
}

type ShowPageResponse struct {
	Page   PageResponse     `json:"page"`
	Blocks []*BlockResponse `json:"blocks,omitempty"`
}

// PageTreeNode is one page in the parent-child hierarchy. Children
// keep the creation order of their pages.
type PageTreeNode struct {
	Id       uuid.UUID       `json:"id"`
	Title    string          `json:"title"`
	Slug     string          `json:"slug"`
	Icon     string          `json:"icon"`
	Children []*PageTreeNode `json:"children"`
}

type UpdatePageRequest struct {
	Id          uuid.UUID
	Title       *string                `json:"title"`
	Content     map[string]interface{} `json:"content"`
	Icon        *string                `json:"icon"`
	CoverImage  *string                `json:"cover_image"`
	IsPublished *bool                  `json:"is_published"`
}
