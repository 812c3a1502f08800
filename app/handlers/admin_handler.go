package handlers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/juicebox-at/limited-builder/app/dto"
	businessflow "github.com/juicebox-at/limited-builder/business_flow"
	"github.com/juicebox-at/limited-builder/utils"
)

// AdminHandlerInterface defines the contract for admin handlers
type AdminHandlerInterface interface {
	BackfillImages(c fiber.Ctx) error
	ExportParticipants(c fiber.Ctx) error
}

// AdminHandler handles admin HTTP requests
type AdminHandler struct {
	adminFlow businessflow.AdminFlow
}

func (h *AdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminFlow businessflow.AdminFlow) *AdminHandler {
	return &AdminHandler{adminFlow: adminFlow}
}

// BackfillImages scans for creations without an image and generates them
func (h *AdminHandler) BackfillImages(c fiber.Ctx) error {
	result, err := h.adminFlow.BackfillImages(h.createRequestContext(c, "/api/v1/admin/images/check", 10*time.Minute))
	if err != nil {
		log.Println("Image backfill failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Image backfill failed", "BACKFILL_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Image backfill completed", result)
}

// ExportParticipants streams an xlsx export of all participants
func (h *AdminHandler) ExportParticipants(c fiber.Ctx) error {
	filename, data, err := h.adminFlow.ExportParticipants(h.createRequestContext(c, "/api/v1/admin/participants/export", 2*time.Minute))
	if err != nil {
		log.Println("Participant export failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Participant export failed", "EXPORT_FAILED", nil)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Status(fiber.StatusOK).Send(data)
}

// createRequestContext creates a context with request-scoped values and a custom timeout
func (h *AdminHandler) createRequestContext(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
