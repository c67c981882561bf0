package rest

import (
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
	"optimizer/api/model"
	"optimizer/config"
	"optimizer/shared/log"
)

// ErrorHandler renders every error as {"detail": ...}. Stage errors carry
// their own status; fiber errors keep theirs; anything else is a 500.
func ErrorHandler(cfg *config.Config, logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		detail := utils.StatusMessage(status)

		var stageErr *model.Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &stageErr):
			status = stageErr.Kind.Status()
			detail = stageErr.Detail(cfg.ExposeErrorDetail)
		case errors.As(err, &fiberErr):
			status = fiberErr.Code
			detail = fiberErr.Message
		}

		logger := log.LoggerWithTrace(c.UserContext(), logger)
		if status >= fiber.StatusInternalServerError {
			logger.Error("Request failed", zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
		} else {
			logger.Debug("Request rejected", zap.String("path", c.Path()), zap.Int("status", status), zap.Error(err))
		}

		return c.Status(status).JSON(model.ErrorResponse{Detail: detail})
	}
}
