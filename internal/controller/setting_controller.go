package controller

import (
	"ai-voicedesk-be/internal/dto"
	"ai-voicedesk-be/internal/pkg/serverutils"
	"ai-voicedesk-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISettingController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	Get(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	ListTemplates(ctx *fiber.Ctx) error
}

type settingController struct {
	service service.ISettingService
}

func NewSettingController(service service.ISettingService) ISettingController {
	return &settingController{service: service}
}

func (c *settingController) RegisterRoutes(r fiber.Router) {
	r.Get("/assistant-templates", serverutils.JwtMiddleware, c.ListTemplates)

	h := r.Group("/settings", serverutils.JwtMiddleware, serverutils.AdminMiddleware)
	h.Get("/", c.List)
	h.Get("/:key", c.Get)
	h.Put("/:key", c.Update)
}

func (c *settingController) List(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.Context(), ctx.Query("group"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Settings retrieved", res))
}

func (c *settingController) Get(ctx *fiber.Ctx) error {
	res, err := c.service.Get(ctx.Context(), ctx.Params("key"))
	if err != nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Setting retrieved", res))
}

func (c *settingController) Update(ctx *fiber.Ctx) error {
	var req dto.UpdateSettingRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid request body"))
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.Update(ctx.Context(), ctx.Params("key"), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Setting updated", res))
}

func (c *settingController) ListTemplates(ctx *fiber.Ctx) error {
	res, err := c.service.ListTemplates(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Templates retrieved", res))
}
