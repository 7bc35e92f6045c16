package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/samber/do"
	"github.com/samber/oops"

	"petsync/app/config"
	"petsync/app/service/queue"
	"petsync/app/service/resolve"
	"petsync/app/service/session"
)

// Service exposes message intake and direct pipeline access over HTTP.
type Service struct {
	cfg      *config.Config
	queue    *queue.Service
	resolver *resolve.Service
	sessions *session.Service
	validate *validator.Validate

	app *fiber.App
}

func New(di *do.Injector) (*Service, error) {
	s := &Service{
		cfg:      do.MustInvoke[*config.Config](di),
		queue:    do.MustInvoke[*queue.Service](di),
		resolver: do.MustInvoke[*resolve.Service](di),
		sessions: do.MustInvoke[*session.Service](di),
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}

	s.app = fiber.New(fiber.Config{
		ReadTimeout:           10 * time.Second,
		DisableStartupMessage: true,
	})

	s.app.Get("/health", s.handleHealth)

	api := s.app.Group("/api/v1")
	api.Post("/messages", s.handleMessage)
	api.Post("/sessions/:id/pipeline", s.handlePipeline)
	api.Get("/sessions/:id/state", s.handleState)

	return s, nil
}

func (s *Service) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()

		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			slog.Error("http shutdown failed", "error", err)
		}
	}()

	slog.Info("http api listening", "addr", s.cfg.HTTP.Listen)

	if err := s.app.Listen(s.cfg.HTTP.Listen); err != nil && !errors.Is(err, context.Canceled) {
		return oops.Wrapf(err, "http server failed")
	}

	return nil
}

func (s *Service) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleMessage accepts a chat message and queues it for processing. Intake
// is fire-and-forget: the pipeline runs asynchronously on the engine loop.
func (s *Service) handleMessage(c *fiber.Ctx) error {
	var msg queue.Message
	if err := c.BodyParser(&msg); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if err := s.validate.Struct(msg); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	s.queue.Add(msg)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "queued",
	})
}

// handlePipeline runs the resolution pipeline synchronously with explicit
// turn input, bypassing the decision model.
func (s *Service) handlePipeline(c *fiber.Ctx) error {
	var in resolve.TurnInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	if in.ProfessionalID == "" {
		in.ProfessionalID = s.cfg.Pipeline.ProfessionalID
	}

	if err := s.validate.Struct(in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	st := s.sessions.Obtain(c.Params("id"))

	result, err := s.resolver.RunPipeline(c.UserContext(), st, in)
	if err != nil {
		slog.Error("pipeline run failed", "session_id", st.ID(), "error", err)
	}
	if result == nil {
		return fiber.NewError(fiber.StatusInternalServerError, "pipeline failed")
	}

	return c.JSON(result)
}

func (s *Service) handleState(c *fiber.Ctx) error {
	st, ok := s.sessions.Lookup(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "unknown session")
	}

	return c.JSON(fiber.Map{
		"session_id": st.ID(),
		"stages":     st.Snapshot(),
	})
}
