package conversation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/do"
	"github.com/samber/oops"

	"petsync/app/config"
	"petsync/app/service/extract"
	"petsync/app/service/resolve"
	"petsync/app/service/session"
)

type decider interface {
	Decide(ctx context.Context, history, sender, message string) (*extract.Decision, error)
}

type state struct {
	mu          sync.Mutex
	history     chatHistory
	datePhrases []string
}

// Service drives the per-message flow: record the message, ask the decision
// model whether it advances a booking, and if so run the resolution pipeline
// with the extracted entities.
type Service struct {
	cfg      *config.Config
	decider  decider
	resolver *resolve.Service
	sessions *session.Service

	mu     sync.Mutex
	states map[string]*state
}

func New(di *do.Injector) (*Service, error) {
	return &Service{
		cfg:      do.MustInvoke[*config.Config](di),
		decider:  do.MustInvoke[*extract.Service](di),
		resolver: do.MustInvoke[*resolve.Service](di),
		sessions: do.MustInvoke[*session.Service](di),
		states:   make(map[string]*state),
	}, nil
}

func (s *Service) obtainState(sessionID string) *state {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[sessionID]
	if !ok {
		st = &state{}
		s.states[sessionID] = st
	}

	return st
}

// ProcessMessage handles one chat message end to end. Low-confidence or
// non-actionable messages only land in the history.
func (s *Service) ProcessMessage(ctx context.Context, sessionID, professionalID, sender, text string) (*resolve.PipelineResult, error) {
	conv := s.obtainState(sessionID)

	conv.mu.Lock()
	defer conv.mu.Unlock()

	historyBefore := conv.history.format()
	conv.history.add(chatMessage{
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	})

	decision, err := s.decider.Decide(ctx, historyBefore, sender, text)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to decide on message")
	}

	logger := slog.With(
		"session_id", sessionID,
		"sender", sender,
		"confidence", decision.Confidence)

	if !decision.RunPipeline {
		logger.Debug("message skipped", "reason", decision.Reason)
		return nil, nil
	}

	if decision.Confidence < s.cfg.Pipeline.MinConfidence {
		logger.Info("extraction below confidence threshold, skipping",
			"reason", decision.Reason)
		return nil, nil
	}

	if professionalID == "" {
		professionalID = s.cfg.Pipeline.ProfessionalID
	}

	turn := resolve.TurnInput{
		ProfessionalID: professionalID,
		CustomerName:   decision.Entities.CustomerName,
		CustomerEmail:  decision.Entities.CustomerEmail,
		CustomerPhone:  decision.Entities.CustomerPhone,
		Pets:           decision.Entities.Pets,
		ServiceRequest: decision.Entities.ServiceRequest,
		DatePhrase:     decision.Entities.DatePhrase,
		DateHistory:    append([]string(nil), conv.datePhrases...),
		Notes:          decision.Entities.Notes,
	}

	result, err := s.resolver.RunPipeline(ctx, s.sessions.Obtain(sessionID), turn)
	if err != nil {
		return result, oops.Wrapf(err, "pipeline failed")
	}

	if decision.Entities.DatePhrase != "" {
		conv.datePhrases = append(conv.datePhrases, decision.Entities.DatePhrase)
	}

	logger.Info("pipeline ran",
		"status", result.Status,
		"halted", result.Halted)

	return result, nil
}
