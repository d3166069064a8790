package api

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/info-beamer/package-scheduled-player/internal/config"
	"github.com/info-beamer/package-scheduled-player/internal/logger"
	"github.com/info-beamer/package-scheduled-player/internal/schedule"
	"github.com/info-beamer/package-scheduled-player/internal/storage"
	"github.com/info-beamer/package-scheduled-player/internal/timeline"
)

type Handlers struct {
	config   *config.Config
	store    *storage.Storage
	pipeline *timeline.Pipeline
	importer *schedule.Importer
	validate *validator.Validate
}

func NewHandlers(cfg *config.Config, store *storage.Storage, pipeline *timeline.Pipeline, importer *schedule.Importer) *Handlers {
	return &Handlers{
		config:   cfg,
		store:    store,
		pipeline: pipeline,
		importer: importer,
		validate: validator.New(),
	}
}

// HealthCheck handles GET /api/v1/health
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// GetTimeline handles GET /api/v1/timeline
func (h *Handlers) GetTimeline(c *fiber.Ctx) error {
	entries, err := h.store.LoadTimeline()
	if err != nil {
		logger.Get().Error().Err(err).Msg("Error loading timeline digest")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load timeline",
		})
	}
	return c.JSON(entries)
}

// GetSchedule handles GET /api/v1/schedule
func (h *Handlers) GetSchedule(c *fiber.Ctx) error {
	if h.config.ScheduleURL == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No schedule feed configured",
		})
	}

	events, err := h.importer.Fetch(c.Context(), h.config.ScheduleURL, h.config.ScheduleGroup)
	if err != nil {
		logger.Get().Error().Err(err).Str("url", h.config.ScheduleURL).Msg("Error importing schedule")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Failed to import schedule",
		})
	}
	return c.JSON(events)
}

// RefreshRequest optionally overrides the configured import parameters.
type RefreshRequest struct {
	NotBefore     string `json:"not_before" validate:"omitempty,datetime=2006-01-02"`
	Count         int    `json:"count" validate:"omitempty,min=1,max=200"`
	FilterGarbage *bool  `json:"filter_garbage"`
}

// RefreshTimeline handles POST /api/v1/admin/refresh. The import runs in the
// background; the response only acknowledges the trigger.
func (h *Handlers) RefreshTimeline(c *fiber.Ctx) error {
	log := logger.Get()

	var req RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body: " + err.Error(),
			})
		}
		if err := h.validate.Struct(&req); err != nil {
			fields := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				fields[fieldErr.Field()] = fieldErr.Tag()
			}
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Validation failed",
				"fields": fields,
			})
		}
	}

	opts := h.runOptions(req)

	log.Info().
		Str("ip", c.IP()).
		Time("not_before", opts.NotBefore).
		Int("count", opts.Count).
		Bool("filter_garbage", opts.FilterGarbage).
		Msg("Starting background timeline import")

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if _, err := h.pipeline.Run(ctx, opts); err != nil {
			log.Error().Err(err).Msg("Timeline import failed")
		}
	}()

	return c.JSON(fiber.Map{
		"status": "started",
	})
}

// runOptions merges configured defaults with per-request overrides.
func (h *Handlers) runOptions(req RefreshRequest) timeline.RunOptions {
	opts := timeline.RunOptions{
		NotBefore:     time.Now().UTC().AddDate(0, 0, -h.config.NotBeforeDays),
		Count:         h.config.MaxPosts,
		FilterGarbage: h.config.FilterGarbage,
	}
	if req.NotBefore != "" {
		if notBefore, err := time.Parse("2006-01-02", req.NotBefore); err == nil {
			opts.NotBefore = notBefore
		}
	}
	if req.Count > 0 {
		opts.Count = req.Count
	}
	if req.FilterGarbage != nil {
		opts.FilterGarbage = *req.FilterGarbage
	}
	return opts
}
