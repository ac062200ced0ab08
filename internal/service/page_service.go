package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blocknote-be/internal/dto"
	"blocknote-be/internal/entity"
	"blocknote-be/internal/pkg/logger"
	"blocknote-be/internal/repository/specification"
	"blocknote-be/internal/repository/unitofwork"
	"blocknote-be/pkg/events"
	pkgNats "blocknote-be/pkg/nats"
	"blocknote-be/pkg/utils"

	"github.com/google/uuid"
)

const (
	defaultPageTitle = "Untitled"
	defaultPageIcon  = "\U0001F4C4"
)

type IPageService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePageRequest) (*dto.PageResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.PageResponse, error)
	Show(ctx context.Context, userId, pageId uuid.UUID, includeBlocks bool) (*dto.ShowPageResponse, error)
	ShowBySlug(ctx context.Context, userId uuid.UUID, slug string) (*dto.ShowPageResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdatePageRequest) (*dto.PageResponse, error)
	Delete(ctx context.Context, userId, pageId uuid.UUID) error
	Search(ctx context.Context, userId uuid.UUID, query string) ([]*dto.PageResponse, error)
	Tree(ctx context.Context, userId uuid.UUID) ([]*dto.PageTreeNode, error)
}

type pageService struct {
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pkgNats.Publisher
	logger         logger.ILogger
}

func NewPageService(
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IPageService {
	return &pageService{
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		logger:         log,
	}
}

func (s *pageService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePageRequest) (*dto.PageResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}

	title := req.Title
	if title == "" {
		title = defaultPageTitle
	}
	icon := req.Icon
	if icon == "" {
		icon = defaultPageIcon
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	slug, err := s.uniqueSlug(ctx, uow, userId, utils.Slugify(title), uuid.Nil)
	if err != nil {
		return nil, err
	}

	page := &entity.Page{
		Id:         uuid.New(),
		UserId:     userId,
		Title:      title,
		Slug:       slug,
		Content:    req.Content,
		Icon:       icon,
		CoverImage: req.CoverImage,
		ParentId:   req.ParentId,
		CreatedAt:  time.Now(),
	}

	if err := uow.PageRepository().Create(ctx, page); err != nil {
		return nil, err
	}

	s.logger.Info("PageService", "Page created", map[string]interface{}{
		"page_id": page.Id, "user_id": userId, "slug": page.Slug,
	})
	s.publishEvent(ctx, "PAGE_CREATED", map[string]interface{}{
		"page_id": page.Id.String(), "user_id": userId.String(),
	})

	return pageToResponse(page), nil
}

func (s *pageService) List(ctx context.Context, userId uuid.UUID) ([]*dto.PageResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	pages, err := uow.PageRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.PageResponse, len(pages))
	for i, p := range pages {
		responses[i] = pageToResponse(p)
	}
	return responses, nil
}

func (s *pageService) Show(ctx context.Context, userId, pageId uuid.UUID, includeBlocks bool) (*dto.ShowPageResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if pageId == uuid.Nil {
		return nil, validationError("page id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	page, err := uow.PageRepository().FindOne(ctx,
		specification.ByID{ID: pageId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, notFoundError("page")
	}

	return s.buildShowResponse(ctx, uow, userId, page, includeBlocks)
}

func (s *pageService) ShowBySlug(ctx context.Context, userId uuid.UUID, slug string) (*dto.ShowPageResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if slug == "" {
		return nil, validationError("slug is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	page, err := uow.PageRepository().FindOne(ctx,
		specification.BySlug{Slug: slug},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, notFoundError("page")
	}

	return s.buildShowResponse(ctx, uow, userId, page, true)
}

func (s *pageService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdatePageRequest) (*dto.PageResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if req.Id == uuid.Nil {
		return nil, validationError("page id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	page, err := uow.PageRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if page == nil {
		return nil, notFoundError("page")
	}

	if req.Title != nil && *req.Title != page.Title {
		page.Title = *req.Title
		// Title changes regenerate the slug; collisions resolve the
		// same way as on create, skipping the page's own current slug.
		slug, err := s.uniqueSlug(ctx, uow, userId, utils.Slugify(page.Title), page.Id)
		if err != nil {
			return nil, err
		}
		page.Slug = slug
	}
	if req.Content != nil {
		page.Content = req.Content
	}
	if req.Icon != nil {
		page.Icon = *req.Icon
	}
	if req.CoverImage != nil {
		page.CoverImage = req.CoverImage
	}
	if req.IsPublished != nil {
		page.IsPublished = *req.IsPublished
	}
	now := time.Now()
	page.UpdatedAt = &now

	if err := uow.PageRepository().Update(ctx, page); err != nil {
		return nil, err
	}

	return pageToResponse(page), nil
}

// Delete removes a page. Blocks and history rows follow through the
// cascading foreign keys.
func (s *pageService) Delete(ctx context.Context, userId, pageId uuid.UUID) error {
	if userId == uuid.Nil {
		return validationError("user id is required")
	}
	if pageId == uuid.Nil {
		return validationError("page id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	page, err := uow.PageRepository().FindOne(ctx,
		specification.ByID{ID: pageId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if page == nil {
		return notFoundError("page")
	}

	if err := uow.PageRepository().Delete(ctx, page.Id); err != nil {
		return err
	}

	s.logger.Info("PageService", "Page deleted", map[string]interface{}{
		"page_id": page.Id, "user_id": userId,
	})
	s.publishEvent(ctx, "PAGE_DELETED", map[string]interface{}{
		"page_id": page.Id.String(), "user_id": userId.String(),
	})
	return nil
}

// Search finds the owner's pages by a case-insensitive title
// substring. Queries shorter than two characters are rejected, they
// match too much to be useful.
func (s *pageService) Search(ctx context.Context, userId uuid.UUID, query string) ([]*dto.PageResponse, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}
	if len(strings.TrimSpace(query)) < 2 {
		return nil, validationError("search query must be at least 2 characters")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	pages, err := uow.PageRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.TitleContains{Query: strings.TrimSpace(query)},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.PageResponse, len(pages))
	for i, p := range pages {
		responses[i] = pageToResponse(p)
	}
	return responses, nil
}

// Tree returns the owner's pages as a parent-child hierarchy, oldest
// first on every level. A page's parent is fixed at creation to an
// already existing page, so the hierarchy cannot cycle.
func (s *pageService) Tree(ctx context.Context, userId uuid.UUID) ([]*dto.PageTreeNode, error) {
	if userId == uuid.Nil {
		return nil, validationError("user id is required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return s.subtree(ctx, uow, userId, nil)
}

func (s *pageService) subtree(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, parentId *uuid.UUID) ([]*dto.PageTreeNode, error) {
	pages, err := uow.PageRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.ByParent{ParentID: parentId},
		specification.OrderBy{Field: "created_at"},
	)
	if err != nil {
		return nil, err
	}

	nodes := make([]*dto.PageTreeNode, len(pages))
	for i, p := range pages {
		children, err := s.subtree(ctx, uow, userId, &p.Id)
		if err != nil {
			return nil, err
		}
		nodes[i] = &dto.PageTreeNode{
			Id:       p.Id,
			Title:    p.Title,
			Slug:     p.Slug,
			Icon:     p.Icon,
			Children: children,
		}
	}
	return nodes, nil
}

// uniqueSlug resolves slug collisions within one owner's pages by
// appending -2, -3 and so on to the base slug. excludeId skips the
// page being renamed so it never collides with itself.
func (s *pageService) uniqueSlug(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, base string, excludeId uuid.UUID) (string, error) {
	candidate := base
	for i := 2; ; i++ {
		existing, err := uow.PageRepository().FindOne(ctx,
			specification.BySlug{Slug: candidate},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return "", err
		}
		if existing == nil || existing.Id == excludeId {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *pageService) buildShowResponse(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, page *entity.Page, includeBlocks bool) (*dto.ShowPageResponse, error) {
	response := &dto.ShowPageResponse{Page: *pageToResponse(page)}
	if !includeBlocks {
		return response, nil
	}

	blocks, err := uow.BlockRepository().FindAll(ctx,
		specification.ByPage{PageID: page.Id},
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "order_index"},
	)
	if err != nil {
		return nil, err
	}

	response.Blocks = make([]*dto.BlockResponse, len(blocks))
	for i, b := range blocks {
		response.Blocks[i] = blockToResponse(b)
	}
	return response, nil
}

func (s *pageService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	event := events.BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("PageService", "Failed to publish event", map[string]interface{}{
			"event_type": eventType, "error": err.Error(),
		})
	}
}

func pageToResponse(p *entity.Page) *dto.PageResponse {
	content := p.Content
	if content == nil {
		content = map[string]interface{}{}
	}
	return &dto.PageResponse{
		Id:          p.Id,
		Title:       p.Title,
		Slug:        p.Slug,
		Content:     content,
		Icon:        p.Icon,
		CoverImage:  p.CoverImage,
		ParentId:    p.ParentId,
		IsPublished: p.IsPublished,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
