package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/do"

	"petsync/app/service/conversation"
	"petsync/app/service/queue"
)

// Service is the processing loop: it drains the message queue and feeds each
// message to the conversation layer, one at a time.
type Service struct {
	queue *queue.Service
	conv  *conversation.Service
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		queue: do.MustInvoke[*queue.Service](di),
		conv:  do.MustInvoke[*conversation.Service](di),
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	slog.Info("engine started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-s.queue.Channel():
			if !ok {
				return nil
			}

			s.process(ctx, msg)
		}
	}
}

func (s *Service) process(ctx context.Context, msg queue.Message) {
	start := time.Now()

	result, err := s.conv.ProcessMessage(ctx, msg.SessionID, msg.ProfessionalID, msg.Sender, msg.Text)

	logger := slog.With(
		"session_id", msg.SessionID,
		"sender", msg.Sender,
		"elapsed", time.Since(start).Round(time.Millisecond))

	switch {
	case err != nil:
		logger.Error("message processing failed", "error", err)
	case result == nil:
		logger.Debug("message did not trigger the pipeline")
	default:
		logger.Info("message processed", "status", result.Status)
	}
}
