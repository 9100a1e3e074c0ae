package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/hr-agent/backend/internal/cache/redis"
	"github.com/hr-agent/backend/internal/dataset"
	"github.com/hr-agent/backend/internal/predict"
	"github.com/hr-agent/backend/pkg/logger"
)

// AnalyticsHandler exposes the prediction and model surfaces directly,
// outside the chat flow.
type AnalyticsHandler struct {
	loader    *dataset.Loader
	predictor *predict.Adapter
	cache     *redis.Client
}

func NewAnalyticsHandler(loader *dataset.Loader, predictor *predict.Adapter, cache *redis.Client) *AnalyticsHandler {
	return &AnalyticsHandler{
		loader:    loader,
		predictor: predictor,
		cache:     cache,
	}
}

// GetPredictions returns the attrition risk ranking for the active
// workforce, highest risk first.
func (h *AnalyticsHandler) GetPredictions(c *fiber.Ctx) error {
	if h.predictor == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Prediction model is not configured",
		})
	}

	table, err := h.loader.Load(c.Context())
	if err != nil {
		logger.Error("Dataset load failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Dataset is unavailable",
		})
	}

	predictions, err := h.predictor.Predict(table)
	if err != nil {
		var missing *predict.MissingFeaturesError
		if errors.As(err, &missing) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":           "Dataset is missing required feature columns",
				"missing_columns": missing.Columns,
			})
		}
		logger.Error("Prediction failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Prediction failed",
		})
	}

	limit := c.QueryInt("limit", 0)
	if limit > 0 && limit < len(predictions) {
		predictions = predictions[:limit]
	}

	return c.JSON(fiber.Map{
		"count":       len(predictions),
		"predictions": predictions,
	})
}

// GetModelMetrics returns the stored evaluation metrics, or recomputes
// them against the current dataset when ?recompute=true.
func (h *AnalyticsHandler) GetModelMetrics(c *fiber.Ctx) error {
	if h.predictor == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Prediction model is not configured",
		})
	}

	if c.QueryBool("recompute", false) {
		table, err := h.loader.Load(c.Context())
		if err != nil {
			logger.Error("Dataset load failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "Dataset is unavailable",
			})
		}

		computed, err := h.predictor.Evaluate(table)
		if err != nil {
			logger.Error("Model evaluation failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Model evaluation failed",
			})
		}

		return c.JSON(fiber.Map{"metrics": computed, "source": "recomputed"})
	}

	return c.JSON(fiber.Map{"metrics": h.predictor.StoredMetrics(), "source": "stored"})
}

// RefreshDataset drops the dataset cache and any cached chat responses
// so the next request sees fresh data.
func (h *AnalyticsHandler) RefreshDataset(c *fiber.Ctx) error {
	h.loader.Invalidate()

	if h.cache != nil {
		if err := h.cache.Invalidate(c.Context()); err != nil {
			logger.Warn("Response cache invalidation failed", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{"status": "refreshed"})
}
