package extract

import (
	"context"
	_ "embed"
	"encoding/json"
	"strings"
	"time"

	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"petsync/app/config"
	"petsync/app/service/resolve"
)

//go:embed decision_prompt_template.txt
var decisionPromptTemplate string

const decideTimeout = 30 * time.Second

// Decision is the model's verdict on a single chat message.
type Decision struct {
	RunPipeline bool     `json:"run_pipeline"`
	Confidence  float32  `json:"confidence"`
	Reason      string   `json:"reason"`
	Entities    Entities `json:"entities"`
}

// Entities holds everything the model extracted from the conversation.
type Entities struct {
	CustomerName   string             `json:"customer_name"`
	CustomerEmail  string             `json:"customer_email"`
	CustomerPhone  string             `json:"customer_phone"`
	Pets           []resolve.PetInput `json:"pets"`
	ServiceRequest string             `json:"service_request"`
	DatePhrase     string             `json:"date_phrase"`
	Notes          string             `json:"notes"`
}

// Service asks an OpenAI-compatible model whether a message advances a
// booking and what entities it carries. Everything downstream of the decision
// is deterministic.
type Service struct {
	llm *openai.LLM
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	llm, err := openai.New(
		openai.WithBaseURL(cfg.OpenAI.Decision.BaseURL),
		openai.WithToken(cfg.OpenAI.Decision.Token),
		openai.WithModel(cfg.OpenAI.Decision.Model),
	)
	if err != nil {
		return nil, oops.Wrapf(err, "failed to init decision model")
	}

	return &Service{
		llm: llm,
	}, nil
}

func (s *Service) Decide(ctx context.Context, history, sender, message string) (*Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, decideTimeout)
	defer cancel()

	prompt := decisionPromptTemplate
	prompt = strings.ReplaceAll(prompt, "{history}", history)
	prompt = strings.ReplaceAll(prompt, "{sender}", sender)
	prompt = strings.ReplaceAll(prompt, "{message}", message)

	resp, err := s.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	},
		llms.WithJSONMode(),
		llms.WithTemperature(0),
		llms.WithMaxTokens(1024),
	)
	if err != nil {
		return nil, oops.Wrapf(err, "decision request failed")
	}

	if len(resp.Choices) == 0 {
		return nil, oops.Errorf("decision model returned no choices")
	}

	var result Decision
	if err = json.Unmarshal([]byte(cleanResponse(resp.Choices[0].Content)), &result); err != nil {
		return nil, oops.Wrapf(err, "failed to parse decision response")
	}

	return &result, nil
}

// Models sometimes wrap JSON output in markdown fences despite JSON mode.
func cleanResponse(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "`")
	text = strings.TrimPrefix(text, "json")
	return strings.TrimSpace(text)
}
