package controller

import (
	"myfolio-chatbot-be/internal/dto"
	"myfolio-chatbot-be/internal/pkg/serverutils"
	"myfolio-chatbot-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatbotController interface {
	RegisterRoutes(r fiber.Router)
	SendChat(ctx *fiber.Ctx) error
	GetCategories(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
}

type chatbotController struct {
	chatbotService service.IChatbotService
}

func NewChatbotController(chatbotService service.IChatbotService) IChatbotController {
	return &chatbotController{
		chatbotService: chatbotService,
	}
}

func (c *chatbotController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("", c.SendChat)
	h.Get("categories", c.GetCategories)
	h.Get("history/:user_id", c.GetChatHistory)
}

func (c *chatbotController) SendChat(ctx *fiber.Ctx) error {
	var req dto.SendChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatbotService.SendChat(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success send chat", res))
}

func (c *chatbotController) GetCategories(ctx *fiber.Ctx) error {
	res, err := c.chatbotService.GetCategories(ctx.Context())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get categories", res))
}

func (c *chatbotController) GetChatHistory(ctx *fiber.Ctx) error {
	userId := ctx.Params("user_id")
	if userId == "" {
		return fiber.NewError(fiber.StatusBadRequest, "user_id is required")
	}

	res, err := c.chatbotService.GetChatHistory(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}
