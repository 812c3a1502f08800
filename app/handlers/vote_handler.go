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

// VoteHandlerInterface defines the contract for vote handlers
type VoteHandlerInterface interface {
	CastVote(c fiber.Ctx) error
	RemoveVote(c fiber.Ctx) error
	GetVoterState(c fiber.Ctx) error
}

// VoteHandler handles vote-related HTTP requests
type VoteHandler struct {
	voteFlow  businessflow.VoteFlow
	validator *validator.Validate
}

func (h *VoteHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *VoteHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewVoteHandler creates a new vote handler
func NewVoteHandler(voteFlow businessflow.VoteFlow) *VoteHandler {
	return &VoteHandler{
		voteFlow:  voteFlow,
		validator: validator.New(),
	}
}

// CastVote handles casting a vote for a creation
func (h *VoteHandler) CastVote(c fiber.Ctx) error {
	var req dto.CastVoteRequest
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

	result, err := h.voteFlow.CastVote(h.createRequestContext(c, "/api/v1/votes"), &req)
	if err != nil {
		if businessflow.IsCreationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Creation not found", "CREATION_NOT_FOUND", nil)
		}
		if businessflow.IsSelfVote(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Voting for your own creation is not allowed", "SELF_VOTE", nil)
		}
		if businessflow.IsAlreadyVoted(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "This email already has a standing vote", "ALREADY_VOTED", nil)
		}
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}

		log.Println("Cast vote failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to cast vote", "CAST_VOTE_FAILED", nil)
	}

	middleware.RecordVoteCast()

	return h.SuccessResponse(c, fiber.StatusOK, "Vote cast successfully", result)
}

// RemoveVote handles retracting a standing vote
func (h *VoteHandler) RemoveVote(c fiber.Ctx) error {
	var req dto.RemoveVoteRequest
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

	result, err := h.voteFlow.RemoveVote(h.createRequestContext(c, "/api/v1/votes/remove"), &req)
	if err != nil {
		if businessflow.IsCreationNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Creation not found", "CREATION_NOT_FOUND", nil)
		}
		if businessflow.IsVoteNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "No standing vote found for this email", "VOTE_NOT_FOUND", nil)
		}
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}

		log.Println("Remove vote failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to remove vote", "REMOVE_VOTE_FAILED", nil)
	}

	middleware.RecordVoteRemoved()

	return h.SuccessResponse(c, fiber.StatusOK, "Vote removed successfully", result)
}

// GetVoterState reports a voter's standing vote and owned creation
func (h *VoteHandler) GetVoterState(c fiber.Ctx) error {
	req := dto.VoterStateRequest{
		VoterEmail: c.Query("voter_email"),
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	result, err := h.voteFlow.GetVoterState(h.createRequestContext(c, "/api/v1/votes/state"), &req)
	if err != nil {
		if businessflow.IsValidationError(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
		}

		log.Println("Get voter state failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get voter state", "VOTER_STATE_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Voter state retrieved successfully", result)
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *VoteHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)

	return ctx
}
