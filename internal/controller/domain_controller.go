package controller

import (
	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/internal/pkg/serverutils"
	"ai-sitebuilder-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IDomainController interface {
	RegisterRoutes(r fiber.Router)
	Suggest(ctx *fiber.Ctx) error
	Check(ctx *fiber.Ctx) error
}

type domainController struct {
	service service.IDomainService
}

func NewDomainController(service service.IDomainService) IDomainController {
	return &domainController{service: service}
}

func (c *domainController) RegisterRoutes(r fiber.Router) {
	r.Post("/domains/suggestions", c.Suggest)
	r.Get("/domains/availability", c.Check)
}

func (c *domainController) Suggest(ctx *fiber.Ctx) error {
	var req dto.SuggestDomainsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SuggestDomains(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success suggest domains", res))
}

func (c *domainController) Check(ctx *fiber.Ctx) error {
	var req dto.CheckDomainRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CheckDomain(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success check domain", res))
}
