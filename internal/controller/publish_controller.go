package controller

import (
	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/internal/pkg/serverutils"
	"ai-sitebuilder-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPublishController interface {
	RegisterRoutes(r fiber.Router)
	Publish(ctx *fiber.Ctx) error
	AttachDomain(ctx *fiber.Ctx) error
}

type publishController struct {
	service service.IPublishService
}

func NewPublishController(service service.IPublishService) IPublishController {
	return &publishController{service: service}
}

func (c *publishController) RegisterRoutes(r fiber.Router) {
	r.Post("/projects/:projectId/publish", c.Publish)
	r.Put("/projects/:projectId/domain", c.AttachDomain)
}

func (c *publishController) Publish(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	var req dto.PublishSiteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Publish(ctx.UserContext(), scope, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success publish site", res))
}

func (c *publishController) AttachDomain(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	var req dto.AttachDomainRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.AttachDomain(ctx.UserContext(), scope, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success attach domain", res))
}
