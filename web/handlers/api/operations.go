package api

import (
	"strings"
	"time"

	"github.com/andrelcunha/otterwatch/internal/core/broker"
	"github.com/andrelcunha/otterwatch/internal/core/coordinator"
	"github.com/andrelcunha/otterwatch/internal/core/models"
	"github.com/andrelcunha/otterwatch/web/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Peek godoc
// @Summary Peek messages
// @Description Replace the peeked main and dead-letter lists with the first messages of a queue
// @Tags inspector
// @Accept json
// @Produce json
// @Param request body models.PeekRequest false "Queue and page size"
// @Success 200 {object} models.OperationDTO
// @Failure 400 {object} models.OperationDTO
// @Failure 401 {object} models.ErrorResponse "Missing or invalid JWT token"
// @Failure 502 {object} models.OperationDTO
// @Router /peek [post]
// @Security BearerAuth
func Peek(c *fiber.Ctx, coord *coordinator.Coordinator) error {
	var req models.PeekRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	res := coord.Peek(c.UserContext(), queueOrCurrent(req.Queue, coord), req.MaxMessages)
	return respond(c, "peek", res)
}

// ResetQueue godoc
// @Summary Reset (purge) a queue
// @Description First call arms the confirmation (202), a second call purges active and dead-letter messages
// @Tags inspector
// @Accept json
// @Produce json
// @Param request body models.ResetQueueRequest false "Queue to purge"
// @Success 200 {object} models.OperationDTO
// @Success 202 {object} models.OperationDTO "Confirmation required"
// @Failure 400 {object} models.OperationDTO
// @Failure 401 {object} models.ErrorResponse "Missing or invalid JWT token"
// @Failure 502 {object} models.OperationDTO
// @Router /reset [post]
// @Security BearerAuth
func ResetQueue(c *fiber.Ctx, coord *coordinator.Coordinator) error {
	var req models.ResetQueueRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	res := coord.ResetQueue(c.UserContext(), queueOrCurrent(req.Queue, coord))
	return respond(c, "reset", res)
}

// CancelReset godoc
// @Summary Cancel a pending reset confirmation
// @Tags inspector
// @Produce json
// @Success 200 {object} models.OperationDTO
// @Failure 401 {object} models.ErrorResponse "Missing or invalid JWT token"
// @Router /reset/cancel [post]
// @Security BearerAuth
func CancelReset(c *fiber.Ctx, coord *coordinator.Coordinator) error {
	return respond(c, "cancel_reset", coord.CancelReset(c.UserContext()))
}

// ChangeQueue godoc
// @Summary Change the monitored queue
// @Tags inspector
// @Accept json
// @Produce json
// @Param request body models.ChangeQueueRequest true "New queue and optional polling interval"
// @Success 200 {object} models.OperationDTO
// @Failure 400 {object} models.OperationDTO
// @Failure 401 {object} models.ErrorResponse "Missing or invalid JWT token"
// @Failure 502 {object} models.OperationDTO
// @Router /queue [post]
// @Security BearerAuth
func ChangeQueue(c *fiber.Ctx, coord *coordinator.Coordinator) error {
	var req models.ChangeQueueRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, err)
	}
	interval := time.Duration(req.IntervalSeconds) * time.Second
	res := coord.ChangeQueue(c.UserContext(), strings.TrimSpace(req.Queue), interval)
	return respond(c, "change_queue", res)
}

// RefreshMetrics godoc
// @Summary Refresh metrics now
// @Tags inspector
// @Produce json
// @Success 200 {object} models.OperationDTO
// @Failure 401 {object} models.ErrorResponse "Missing or invalid JWT token"
// @Failure 502 {object} models.OperationDTO
// @Router /refresh [post]
// @Security BearerAuth
func RefreshMetrics(c *fiber.Ctx, coord *coordinator.Coordinator) error {
	return respond(c, "refresh", coord.RefreshMetrics(c.UserContext()))
}

// SelectMessage godoc
// @Summary Select a peeked dead-letter message
// @Description A null index clears the selection
// @Tags inspector
// @Accept json
// @Produce json
// @Param request body models.SelectMessageRequest true "Index into the dead-letter list"
// @Success 200 {object} models.OperationDTO
// @Failure 400 {object} models.OperationDTO
// @Failure 401 {object} models.ErrorResponse "Missing or invalid JWT token"
// @Router /select [post]
// @Security BearerAuth
func SelectMessage(c *fiber.Ctx, coord *coordinator.Coordinator) error {
	var req models.SelectMessageRequest
	if err := parseOptionalBody(c, &req); err != nil {
		return badRequest(c, err)
	}
	if req.Index == nil {
		return respond(c, "clear_selection", coord.ClearSelection(c.UserContext()))
	}
	return respond(c, "select", coord.SelectMessage(c.UserContext(), *req.Index))
}

func queueOrCurrent(queue string, coord *coordinator.Coordinator) string {
	if q := strings.TrimSpace(queue); q != "" {
		return q
	}
	return coord.State().Snapshot().CurrentQueueName
}

// parseOptionalBody decodes the body when there is one.
func parseOptionalBody(c *fiber.Ctx, out any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	return c.BodyParser(out)
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: "Invalid request body: " + err.Error(),
	})
}

func respond(c *fiber.Ctx, operation string, res coordinator.Result) error {
	log.Debug().
		Str("operation", operation).
		Str("subject", middleware.Subject(c)).
		Str("outcome", string(res.Status)).
		Msg("API operation")

	return c.Status(statusFor(res)).JSON(models.OperationDTO{
		Status:  string(res.Status),
		Message: res.Message,
		Metrics: res.Metrics,
	})
}

func statusFor(res coordinator.Result) int {
	switch res.Status {
	case coordinator.StatusCompleted:
		return fiber.StatusOK
	case coordinator.StatusConfirmationRequired:
		return fiber.StatusAccepted
	}
	switch res.Kind {
	case broker.KindValidation:
		return fiber.StatusBadRequest
	case broker.KindCancelled:
		return fiber.StatusRequestTimeout
	default:
		return fiber.StatusBadGateway
	}
}
