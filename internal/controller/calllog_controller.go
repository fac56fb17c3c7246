package controller

import (
	"ai-voicedesk-be/internal/dto"
	"ai-voicedesk-be/internal/pkg/serverutils"
	"ai-voicedesk-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ICallLogController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Sync(ctx *fiber.Ctx) error
}

type callLogController struct {
	service service.ICallLogService
}

func NewCallLogController(service service.ICallLogService) ICallLogController {
	return &callLogController{service: service}
}

func (c *callLogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/calls", serverutils.JwtMiddleware)
	h.Get("/", c.List)
	h.Get("/stats", c.Stats)
	h.Get("/:callId", c.Get)
	h.Post("/sync", serverutils.AdminMiddleware, c.Sync)
}

func (c *callLogController) List(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "unauthorized"))
	}

	var filter dto.CallLogFilter
	if err := ctx.QueryParser(&filter); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid query parameters"))
	}

	res, err := c.service.List(ctx.Context(), userID, &filter)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Calls retrieved", res))
}

func (c *callLogController) Get(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "unauthorized"))
	}

	res, err := c.service.Get(ctx.Context(), userID, ctx.Params("callId"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Call retrieved", res))
}

func (c *callLogController) Stats(ctx *fiber.Ctx) error {
	userID, err := serverutils.UserID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "unauthorized"))
	}

	var assistantID *uuid.UUID
	if raw := ctx.Query("assistant_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid assistant id"))
		}
		assistantID = &id
	}

	res, err := c.service.Stats(ctx.Context(), userID, assistantID)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Call stats retrieved", res))
}

func (c *callLogController) Sync(ctx *fiber.Ctx) error {
	var req dto.SyncCallsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.Sync(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Call sync finished", res))
}
