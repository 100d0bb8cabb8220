package controller

import (
	"ai-sitebuilder-be/internal/dto"
	"ai-sitebuilder-be/internal/entity"
	"ai-sitebuilder-be/internal/pkg/serverutils"
	"ai-sitebuilder-be/internal/service"
	"ai-sitebuilder-be/pkg/publish"

	"github.com/gofiber/fiber/v2"
)

type ISiteController interface {
	RegisterRoutes(r fiber.Router)
	Generate(ctx *fiber.Ctx) error
	ListProjects(ctx *fiber.Ctx) error
	Ingest(ctx *fiber.Ctx) error
	Edit(ctx *fiber.Ctx) error
	EditFields(ctx *fiber.Ctx) error
	Assemble(ctx *fiber.Ctx) error
	ListBlocks(ctx *fiber.Ctx) error
	Document(ctx *fiber.Ctx) error
}

type siteController struct {
	editService       service.ISiteEditService
	generationService service.ISiteGenerationService
	sessionService    service.IProjectSessionService
}

func NewSiteController(
	editService service.ISiteEditService,
	generationService service.ISiteGenerationService,
	sessionService service.IProjectSessionService,
) ISiteController {
	return &siteController{
		editService:       editService,
		generationService: generationService,
		sessionService:    sessionService,
	}
}

func (c *siteController) RegisterRoutes(r fiber.Router) {
	r.Post("/projects", c.Generate)
	r.Get("/projects", c.ListProjects)
	r.Post("/projects/:projectId/ingest", c.Ingest)
	r.Post("/projects/:projectId/edit", c.Edit)
	r.Patch("/projects/:projectId/fields", c.EditFields)
	r.Post("/projects/:projectId/assemble", c.Assemble)
	r.Get("/projects/:projectId/blocks", c.ListBlocks)
	r.Get("/projects/:projectId/document", c.Document)
}

// scopeOf builds the request scope. Project ids become folder names, so only slug
// characters are accepted.
func scopeOf(ctx *fiber.Ctx) (entity.Scope, error) {
	projectId := ctx.Params("projectId")
	if projectId == "" || publish.Slug(projectId) != projectId {
		return entity.Scope{}, fiber.NewError(fiber.StatusBadRequest, "invalid project id")
	}
	return entity.Scope{OwnerId: serverutils.OwnerId(ctx), ProjectId: projectId}, nil
}

func (c *siteController) Generate(ctx *fiber.Ctx) error {
	var req dto.GenerateSiteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.generationService.Generate(ctx.UserContext(), serverutils.OwnerId(ctx), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate site", res))
}

func (c *siteController) ListProjects(ctx *fiber.Ctx) error {
	res, err := c.sessionService.ListProjects(ctx.UserContext(), serverutils.OwnerId(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all projects", res))
}

func (c *siteController) Ingest(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	res, err := c.editService.Ingest(ctx.UserContext(), scope)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ingest site", res))
}

func (c *siteController) Edit(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	var req dto.EditSiteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.editService.Edit(ctx.UserContext(), scope, &req)
	if err != nil {
		return err
	}

	message := "Success edit site"
	if res.NothingToEdit {
		message = res.Message
	}
	return ctx.JSON(serverutils.SuccessResponse(message, res))
}

func (c *siteController) EditFields(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	var req dto.EditFieldsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.editService.EditFields(ctx.UserContext(), scope, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success edit fields", res))
}

func (c *siteController) Assemble(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	res, err := c.editService.Assemble(ctx.UserContext(), scope)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success assemble site", res))
}

func (c *siteController) ListBlocks(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	res, err := c.editService.ListBlocks(ctx.UserContext(), scope)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all blocks", res))
}

// Document serves the projection as HTML unless JSON is asked for.
func (c *siteController) Document(ctx *fiber.Ctx) error {
	scope, err := scopeOf(ctx)
	if err != nil {
		return err
	}

	res, err := c.editService.Document(ctx.UserContext(), scope)
	if err != nil {
		return err
	}

	if ctx.Accepts(fiber.MIMETextHTML, fiber.MIMEApplicationJSON) == fiber.MIMEApplicationJSON {
		return ctx.JSON(serverutils.SuccessResponse("Success get document", res))
	}
	ctx.Type("html", "utf-8")
	return ctx.SendString(res.Document)
}
