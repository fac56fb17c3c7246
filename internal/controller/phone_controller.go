package controller

import (
	"ai-voicedesk-be/internal/dto"
	"ai-voicedesk-be/internal/pkg/serverutils"
	"ai-voicedesk-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPhoneController interface {
	RegisterRoutes(r fiber.Router)
	Search(ctx *fiber.Ctx) error
	ListOwned(ctx *fiber.Ctx) error
	Release(ctx *fiber.Ctx) error
}

type phoneController struct {
	service service.IPhoneService
}

func NewPhoneController(service service.IPhoneService) IPhoneController {
	return &phoneController{service: service}
}

func (c *phoneController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/phone-numbers", serverutils.JwtMiddleware)
	h.Get("/search", c.Search)
	h.Get("/", serverutils.AdminMiddleware, c.ListOwned)
	h.Delete("/:sid", serverutils.AdminMiddleware, c.Release)
}

func (c *phoneController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchNumbersRequest
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "invalid query parameters"))
	}

	res, err := c.service.Search(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Available numbers retrieved", res))
}

func (c *phoneController) ListOwned(ctx *fiber.Ctx) error {
	res, err := c.service.ListOwned(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Owned numbers retrieved", res))
}

func (c *phoneController) Release(ctx *fiber.Ctx) error {
	if err := c.service.Release(ctx.Context(), ctx.Params("sid")); err != nil {
		return ctx.Status(fiber.StatusBadGateway).JSON(serverutils.ErrorResponse(502, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Number released", nil))
}
