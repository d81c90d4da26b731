package api

import (
	"github.com/andrelcunha/otterwatch/internal/core/coordinator"
	"github.com/andrelcunha/otterwatch/internal/core/models"
	"github.com/andrelcunha/otterwatch/internal/core/state"

	"github.com/gofiber/fiber/v2"
)

// GetState godoc
// @Summary Get the inspector state
// @Description Current queue, latest metrics with trend, peeked messages and status text
// @Tags inspector
// @Produce json
// @Success 200 {object} models.StateDTO
// @Router /state [get]
func GetState(c *fiber.Ctx, coord *coordinator.Coordinator) error {
	return c.Status(fiber.StatusOK).JSON(stateDTO(coord.State().Snapshot()))
}

// GetHealth godoc
// @Summary Health of the monitored queue
// @Description Reports whether the latest metrics snapshot was captured without error
// @Tags inspector
// @Produce json
// @Success 200 {object} models.HealthDTO
// @Failure 503 {object} models.HealthDTO "Latest snapshot carries an error"
// @Router /health [get]
func GetHealth(c *fiber.Ctx, coord *coordinator.Coordinator) error {
	snap := coord.State().Snapshot()
	health := models.HealthDTO{
		Healthy:    snap.Metrics.Healthy() && !snap.Metrics.CapturedAt.IsZero(),
		QueueName:  snap.CurrentQueueName,
		CapturedAt: snap.Metrics.CapturedAt,
		Error:      snap.Metrics.Error,
	}
	if !health.Healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(health)
	}
	return c.Status(fiber.StatusOK).JSON(health)
}

func stateDTO(snap state.Snapshot) models.StateDTO {
	dto := models.StateDTO{
		Version:          snap.Version,
		CurrentQueueName: snap.CurrentQueueName,
		Metrics: models.MetricsDTO{
			QueueMetrics:   snap.Metrics,
			Healthy:        snap.Metrics.Healthy(),
			ActiveRate:     snap.Trend.ActiveRate,
			DeadLetterRate: snap.Trend.DeadLetterRate,
		},
		Generation:      snap.Generation,
		MainMessages:    snap.MainQueueMessages,
		DeadLetters:     snap.DeadLetterMessages,
		PeekError:       snap.PeekError,
		WarningMessage:  snap.WarningMessage,
		SuccessMessage:  snap.SuccessMessage,
		ConfirmingReset: snap.ConfirmingReset,
	}
	if _, ok := snap.SelectedMessage(); ok {
		index := snap.Selected.Index
		dto.SelectedIndex = &index
	}
	return dto
}
