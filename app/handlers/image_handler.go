package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/juicebox-at/limited-builder/app/dto"
	"github.com/juicebox-at/limited-builder/app/middleware"
	businessflow "github.com/juicebox-at/limited-builder/business_flow"
	"github.com/juicebox-at/limited-builder/utils"
)

// ImageHandlerInterface defines the contract for image handlers
type ImageHandlerInterface interface {
	GenerateImage(c fiber.Ctx) error
}

// ImageHandler handles image generation HTTP requests
type ImageHandler struct {
	imageFlow businessflow.ImageFlow
	validator *validator.Validate
}

func (h *ImageHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ImageHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewImageHandler creates a new image handler
func NewImageHandler(imageFlow businessflow.ImageFlow) *ImageHandler {
	return &ImageHandler{
		imageFlow: imageFlow,
		validator: validator.New(),
	}
}

// GenerateImage handles promotional image generation for a creation.
// A failed pipeline is not an HTTP error: the response stays 200 with a
// null image_url and a warning, so clients never block on images.
func (h *ImageHandler) GenerateImage(c fiber.Ctx) error {
	var req dto.GenerateImageRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.imageFlow.GenerateImage(h.createRequestContext(c, "/api/v1/images/generate"), &req)
	if err != nil {
		if businessflow.IsCreationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Creation not found", "CREATION_NOT_FOUND", nil)
		}

		log.Println("Image generation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Image generation failed", "IMAGE_GENERATION_FAILED", nil)
	}

	if result.ImageURL != nil {
		middleware.RecordImageGenerated()
	} else {
		middleware.RecordImageFailed()
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Image generation completed", result)
}

// createRequestContext creates a context with request-scoped values.
// The timeout leaves headroom over the image pipeline's own deadline.
func (h *ImageHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
