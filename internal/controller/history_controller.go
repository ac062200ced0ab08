package controller

import (
	"strconv"

	"blocknote-be/internal/dto"
	"blocknote-be/internal/pkg/serverutils"
	"blocknote-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type HistoryController struct {
	historyService   service.IHistoryService
	retentionService service.IRetentionService
	retentionDays    int
}

func NewHistoryController(
	historyService service.IHistoryService,
	retentionService service.IRetentionService,
	retentionDays int,
) *HistoryController {
	return &HistoryController{
		historyService:   historyService,
		retentionService: retentionService,
		retentionDays:    retentionDays,
	}
}

func (c *HistoryController) RegisterRoutes(router fiber.Router) {
	r := router.Group("/page/v1/:pageId/history", serverutils.JwtMiddleware)
	r.Get("/", c.GetPageHistory)
	r.Get("/timeline", c.GetTimeline)
	r.Get("/snapshots", c.GetSnapshots)
	r.Get("/:historyId", c.GetPageAtHistory)

	router.Post("/history/v1/cleanup", serverutils.JwtMiddleware, c.Cleanup)
}

func (c *HistoryController) GetPageHistory(ctx *fiber.Ctx) error {
	pageId, _ := uuid.Parse(ctx.Params("pageId"))
	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 20)

	resp, err := c.historyService.GetPageHistory(ctx.Context(), currentUserId(ctx), pageId, page, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", resp))
}

func (c *HistoryController) GetTimeline(ctx *fiber.Ctx) error {
	pageId, _ := uuid.Parse(ctx.Params("pageId"))
	limit := ctx.QueryInt("limit", 50)

	resp, err := c.historyService.GetTimelineEntries(ctx.Context(), currentUserId(ctx), pageId, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", resp))
}

func (c *HistoryController) GetSnapshots(ctx *fiber.Ctx) error {
	pageId, _ := uuid.Parse(ctx.Params("pageId"))
	limit := ctx.QueryInt("limit", 10)

	resp, err := c.historyService.GetRecentSnapshots(ctx.Context(), currentUserId(ctx), pageId, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", resp))
}

func (c *HistoryController) GetPageAtHistory(ctx *fiber.Ctx) error {
	pageId, _ := uuid.Parse(ctx.Params("pageId"))
	historyId, err := strconv.ParseInt(ctx.Params("historyId"), 10, 64)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid history id")
	}

	resp, err := c.historyService.GetPageAtHistory(ctx.Context(), currentUserId(ctx), pageId, historyId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("OK", resp))
}

// Cleanup prunes the caller's history records older than the requested
// number of days, defaulting to the configured retention window. Only
// the caller's own records are touched.
func (c *HistoryController) Cleanup(ctx *fiber.Ctx) error {
	days := ctx.QueryInt("days", c.retentionDays)
	userId := currentUserId(ctx)

	deleted, err := c.retentionService.CleanupOldHistory(ctx.Context(), days, &userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("History cleaned up", dto.CleanupHistoryResponse{
		DeletedCount: deleted,
	}))
}
