package queue

import (
	"log/slog"

	"github.com/samber/do"

	"petsync/app/util/mylog"
)

const queueSize = 64

// Message is one inbound group-chat message awaiting processing.
type Message struct {
	SessionID      string `json:"session_id"`
	ProfessionalID string `json:"professional_id"`
	Sender         string `json:"sender" validate:"required"`
	Text           string `json:"text" validate:"required"`
}

// Service decouples message intake from pipeline execution. Intake never
// blocks: when the queue is full the message is dropped with a warning.
type Service struct {
	queue chan Message
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		queue: make(chan Message, queueSize),
	}, nil
}

func (s *Service) Add(msg Message) {
	select {
	case s.queue <- msg:
	default:
		slog.Warn("message queue is full, dropping message",
			"session_id", msg.SessionID,
			"sender", msg.Sender,
			mylog.AttrNotify, true)
	}
}

func (s *Service) Channel() <-chan Message {
	return s.queue
}

func (s *Service) Shutdown() error {
	close(s.queue)
	return nil
}
