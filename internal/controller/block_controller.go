package controller

import (
	"blocknote-be/internal/dto"
	"blocknote-be/internal/pkg/serverutils"
	"blocknote-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type BlockController struct {
	blockService service.IBlockService
}

func NewBlockController(blockService service.IBlockService) *BlockController {
	return &BlockController{blockService: blockService}
}

func (c *BlockController) RegisterRoutes(router fiber.Router) {
	b := router.Group("/block/v1", serverutils.JwtMiddleware)
	b.Post("/", c.Create)
	b.Patch("/:blockId", c.Update)
	b.Delete("/:blockId", c.Delete)

	p := router.Group("/page/v1/:pageId/blocks", serverutils.JwtMiddleware)
	p.Get("/", c.GetPageBlocks)
	p.Put("/", c.SaveBlocks)
	p.Put("/reorder", c.Reorder)
}

func (c *BlockController) Create(ctx *fiber.Ctx) error {
	var req dto.CreateBlockRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}

	resp, err := c.blockService.Create(ctx.Context(), currentUserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Block created", resp))
}

func (c *BlockController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateBlockRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	req.Id, _ = uuid.Parse(ctx.Params("blockId"))

	resp, err := c.blockService.Update(ctx.Context(), currentUserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Block updated", resp))
}

func (c *BlockController) Delete(ctx *fiber.Ctx) error {
	blockId, _ := uuid.Parse(ctx.Params("blockId"))

	if err := c.blockService.Delete(ctx.Context(), currentUserId(ctx), blockId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Block deleted", fiber.Map{}))
}

func (c *BlockController) GetPageBlocks(ctx *fiber.Ctx) error {
	pageId, _ := uuid.Parse(ctx.Params("pageId"))

	resp, err := c.blockService.GetPageBlocks(ctx.Context(), currentUserId(ctx), pageId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", resp))
}

func (c *BlockController) SaveBlocks(ctx *fiber.Ctx) error {
	var req dto.SaveBlocksRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}
	req.PageId, _ = uuid.Parse(ctx.Params("pageId"))

	resp, err := c.blockService.SaveBlocks(ctx.Context(), currentUserId(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Blocks saved", resp))
}

func (c *BlockController) Reorder(ctx *fiber.Ctx) error {
	var req dto.ReorderBlocksRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}
	req.PageId, _ = uuid.Parse(ctx.Params("pageId"))

	if err := c.blockService.Reorder(ctx.Context(), currentUserId(ctx), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Blocks reordered", fiber.Map{}))
}
