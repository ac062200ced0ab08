package controller

import (
	"blocknote-be/internal/dto"
	"blocknote-be/internal/pkg/serverutils"
	"blocknote-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PageController struct {
	pageService service.IPageService
}

func NewPageController(pageService service.IPageService) *PageController {
	return &PageController{pageService: pageService}
}

func (c *PageController) RegisterRoutes(router fiber.Router) {
	r := router.Group("/page/v1", serverutils.JwtMiddleware)
	r.Post("/", c.Create)
	r.Get("/", c.List)
	r.Get("/slug/:slug", c.ShowBySlug)
	// Static routes first so :pageId never captures them.
	r.Get("/search", c.Search)
	r.Get("/tree", c.Tree)
	r.Get("/:pageId", c.Show)
	r.Put("/:pageId", c.Update)
	r.Delete("/:pageId", c.Delete)
}

func (c *PageController) Create(ctx *fiber.Ctx) error {
	var req dto.CreatePageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	resp, err := c.pageService.Create(ctx.Context(), currentUserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Page created", resp))
}

func (c *PageController) List(ctx *fiber.Ctx) error {
	resp, err := c.pageService.List(ctx.Context(), currentUserId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", resp))
}

func (c *PageController) Search(ctx *fiber.Ctx) error {
	resp, err := c.pageService.Search(ctx.Context(), currentUserId(ctx), ctx.Query("q"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", resp))
}

func (c *PageController) Tree(ctx *fiber.Ctx) error {
	resp, err := c.pageService.Tree(ctx.Context(), currentUserId(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", resp))
}

func (c *PageController) Show(ctx *fiber.Ctx) error {
	pageId, _ := uuid.Parse(ctx.Params("pageId"))
	includeBlocks := ctx.QueryBool("include_blocks", true)

	resp, err := c.pageService.Show(ctx.Context(), currentUserId(ctx), pageId, includeBlocks)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", resp))
}

func (c *PageController) ShowBySlug(ctx *fiber.Ctx) error {
	resp, err := c.pageService.ShowBySlug(ctx.Context(), currentUserId(ctx), ctx.Params("slug"))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", resp))
}

func (c *PageController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdatePageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.Id, _ = uuid.Parse(ctx.Params("pageId"))

	resp, err := c.pageService.Update(ctx.Context(), currentUserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Page updated", resp))
}

func (c *PageController) Delete(ctx *fiber.Ctx) error {
	pageId, _ := uuid.Parse(ctx.Params("pageId"))

	if err := c.pageService.Delete(ctx.Context(), currentUserId(ctx), pageId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Page deleted", fiber.Map{}))
}
