package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySlug filters pages by slug. Combine with UserOwnedBy: slugs are
// only unique within one owner's pages.
type BySlug struct {
	Slug string
}

func (s BySlug) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("slug = ?", s.Slug)
}

// ByParent filters pages by parent page, nil meaning top-level pages.
type ByParent struct {
	ParentID *uuid.UUID
}

func (s ByParent) Apply(db *gorm.DB) *gorm.DB {
	if s.ParentID == nil {
		return db.Where("parent_id IS NULL")
	}
	return db.Where("parent_id = ?", *s.ParentID)
}

// TitleContains filters pages whose title contains the query,
// case-insensitively.
type TitleContains struct {
	Query string
}

func (s TitleContains) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title ILIKE ?", "%"+s.Query+"%")
}

// ByPage filters blocks by their owning page.
type ByPage struct {
	PageID uuid.UUID
}

func (s ByPage) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("page_id = ?", s.PageID)
}
