package serverutils

import (
	"errors"
	"log"

	"myfolio-chatbot-be/pkg/rag/generate"
	"myfolio-chatbot-be/pkg/rag/retriever"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Generic client-facing messages. Upstream error detail (node names, domains,
// provider response bodies) stays in the server log only.
const (
	msgUpstreamFailure = "Failed to generate an answer, please try again later"
	msgInternalError   = "Internal server error"
)

// ErrorHandlerMiddleware converts errors returned by controllers into the
// standard response envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return ctx.Status(fiber.StatusBadRequest).
				JSON(ErrorResponse(fiber.StatusBadRequest, validationErrs.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).
				JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx.Status(fiber.StatusNotFound).
				JSON(ErrorResponse(fiber.StatusNotFound, "Record not found"))
		}

		var retrievalErr *retriever.RetrievalError
		if errors.As(err, &retrievalErr) {
			log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), retrievalErr)
			return ctx.Status(fiber.StatusBadGateway).
				JSON(ErrorResponse(fiber.StatusBadGateway, msgUpstreamFailure))
		}

		var generationErr *generate.GenerationError
		if errors.As(err, &generationErr) {
			log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), generationErr)
			return ctx.Status(fiber.StatusBadGateway).
				JSON(ErrorResponse(fiber.StatusBadGateway, msgUpstreamFailure))
		}

		log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, msgInternalError))
	}
}
