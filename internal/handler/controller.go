package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"trends-go/internal/service"
	"trends-go/pkg/logger"
	"trends-go/pkg/pipeline"
)

// Controller exposes the pipeline over HTTP for manual triggering and
// report inspection. Scheduling stays with the hosting orchestrator; this
// surface only covers health, trigger, and the latest report.
type Controller struct {
	pipeline service.PipelineService
	log      *logger.Logger
}

func NewController(p service.PipelineService, log *logger.Logger) *Controller {
	return &Controller{
		pipeline: p,
		log:      log.WithComponent("http"),
	}
}

// NewApp builds the fiber application with all routes registered.
func NewApp(c *Controller) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	c.Register(app)
	return app
}

func (c *Controller) Register(app *fiber.App) {
	app.Get("/healthz", c.health)
	app.Post("/run", c.run)
	app.Get("/report", c.report)
}

func (c *Controller) health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}

func (c *Controller) run(ctx *fiber.Ctx) error {
	result, err := c.pipeline.Run(ctx.Context())
	if err != nil {
		if errors.Is(err, pipeline.ErrRunInProgress) {
			return ctx.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		c.log.WithError(err).Error("Pipeline run failed")
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return ctx.JSON(result)
}

func (c *Controller) report(ctx *fiber.Ctx) error {
	report := c.pipeline.LastReport()
	if report == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no completed run yet",
		})
	}
	return ctx.JSON(report)
}
