package controller

import (
	"jurisperform-be/internal/dto"
	"jurisperform-be/internal/pkg/serverutils"
	"jurisperform-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ICourseController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Resolve(ctx *fiber.Ctx) error
}

type courseController struct {
	service service.ICourseService
}

func NewCourseController(service service.ICourseService) ICourseController {
	return &courseController{service: service}
}

// RegisterRoutes mounts the public catalog routes.
func (c *courseController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/course/v1")
	h.Get("", c.GetAll)
	h.Get("resolve", c.Resolve)
	h.Get(":id", c.Show)
}

func (c *courseController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.List(ctx.UserContext(), ctx.Query("level"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all course", res))
}

func (c *courseController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show course", res))
}

func (c *courseController) Resolve(ctx *fiber.Ctx) error {
	var req dto.ResolveCourseRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid query")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Resolve(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success resolve course", res))
}
