package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/juicebox-at/limited-builder/app/dto"
	businessflow "github.com/juicebox-at/limited-builder/business_flow"
	"github.com/juicebox-at/limited-builder/utils"
)

// CreationHandlerInterface defines the contract for creation handlers
type CreationHandlerInterface interface {
	SubmitCreation(c fiber.Ctx) error
	ListCreations(c fiber.Ctx) error
	GetCreation(c fiber.Ctx) error
	DeleteCreation(c fiber.Ctx) error
	AdminDeleteCreation(c fiber.Ctx) error
	GetCatalog(c fiber.Ctx) error
}

// CreationHandler handles creation-related HTTP requests
type CreationHandler struct {
	creationFlow businessflow.CreationFlow
	validator    *validator.Validate
}

func (h *CreationHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CreationHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewCreationHandler creates a new creation handler
func NewCreationHandler(creationFlow businessflow.CreationFlow) *CreationHandler {
	handler := &CreationHandler{
		creationFlow: creationFlow,
		validator:    validator.New(),
	}

	// Setup custom validations
	handler.setupCustomValidations()

	return handler
}

// SubmitCreation handles a new beverage creation submission
func (h *CreationHandler) SubmitCreation(c fiber.Ctx) error {
	var req dto.SubmitCreationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	// Get client information
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get("X-Request-ID"))

	result, err := h.creationFlow.SubmitCreation(h.createRequestContext(c, "/api/v1/creations"), &req, metadata)
	if err != nil {
		var dupEmail *businessflow.DuplicateEmailError
		if errors.As(err, &dupEmail) {
			return h.ErrorResponse(c, fiber.StatusConflict, "This email has already submitted a creation", "DUPLICATE_EMAIL", fiber.Map{
				"existing_name": dupEmail.ExistingName,
				"existing_uuid": dupEmail.ExistingUUID,
			})
		}
		if businessflow.IsDuplicateName(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "A creation with this name already exists", "DUPLICATE_NAME", nil)
		}
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}

		log.Println("Creation submission failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Creation submission failed", "SUBMISSION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, "Creation submitted successfully", result)
}

// ListCreations handles the leaderboard listing with optional filters
func (h *CreationHandler) ListCreations(c fiber.Ctx) error {
	limit := 50
	if v, err := strconv.Atoi(c.Query("limit", "50")); err == nil && v > 0 {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	offset := 0
	if v, err := strconv.Atoi(c.Query("offset", "0")); err == nil && v >= 0 {
		offset = v
	}

	req := &dto.ListCreationsRequest{
		Limit:   limit,
		Offset:  offset,
		Flavor:  c.Query("flavor"),
		Accent:  c.Query("accent"),
		Variant: c.Query("variant"),
	}

	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.creationFlow.ListCreations(h.createRequestContext(c, "/api/v1/creations"), req)
	if err != nil {
		log.Println("List creations failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list creations", "LIST_CREATIONS_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Creations retrieved successfully", result)
}

// GetCreation handles fetching a single creation by UUID
func (h *CreationHandler) GetCreation(c fiber.Ctx) error {
	creationUUID := c.Params("uuid")
	if creationUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Creation UUID is required", "MISSING_CREATION_UUID", nil)
	}

	result, err := h.creationFlow.GetCreation(h.createRequestContext(c, "/api/v1/creations/"+creationUUID), creationUUID)
	if err != nil {
		if businessflow.IsCreationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Creation not found", "CREATION_NOT_FOUND", nil)
		}

		log.Println("Get creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get creation", "GET_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Creation retrieved successfully", result)
}

// DeleteCreation handles creation deletion by its owner
func (h *CreationHandler) DeleteCreation(c fiber.Ctx) error {
	return h.deleteCreation(c, false)
}

// AdminDeleteCreation handles creation deletion via the admin surface,
// skipping the ownership check.
func (h *CreationHandler) AdminDeleteCreation(c fiber.Ctx) error {
	return h.deleteCreation(c, true)
}

func (h *CreationHandler) deleteCreation(c fiber.Ctx, isAdmin bool) error {
	creationUUID := c.Params("uuid")
	if creationUUID == "" {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Creation UUID is required", "MISSING_CREATION_UUID", nil)
	}

	var req dto.DeleteCreationRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().JSON(&req); err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
		}
	}
	req.UUID = creationUUID

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.creationFlow.DeleteCreation(h.createRequestContext(c, "/api/v1/creations/"+creationUUID), &req, isAdmin)
	if err != nil {
		if businessflow.IsCreationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Creation not found", "CREATION_NOT_FOUND", nil)
		}
		if businessflow.IsNotCreationOwner(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Requester does not own this creation", "NOT_CREATION_OWNER", nil)
		}

		log.Println("Delete creation failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete creation", "DELETE_CREATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Creation deleted successfully", result)
}

// GetCatalog returns the selectable builder options
func (h *CreationHandler) GetCatalog(c fiber.Ctx) error {
	return h.SuccessResponse(c, fiber.StatusOK, "Catalog retrieved successfully", h.creationFlow.GetCatalog())
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *CreationHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *CreationHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel) // Store cancel function for cleanup

	return ctx
}

// setupCustomValidations sets up custom validation rules
func (h *CreationHandler) setupCustomValidations() {
	_ = h.validator.RegisterValidation("creation_name", func(fl validator.FieldLevel) bool {
		return businessflow.ValidateCreationName(fl.Field().String()) == nil
	})
}
