package mcptool

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
	"github.com/samber/oops"

	"petsync/app/config"
	"petsync/app/service/resolve"
	"petsync/app/service/session"
)

// Service exposes the resolution stages as MCP tools over stdio, so an
// external agent can drive them step by step instead of going through the
// message pipeline. Every tool shares state through the session id.
type Service struct {
	cfg      *config.Config
	resolver *resolve.Service
	sessions *session.Service

	srv *server.MCPServer
}

func New(di *do.Injector) (*Service, error) {
	s := &Service{
		cfg:      do.MustInvoke[*config.Config](di),
		resolver: do.MustInvoke[*resolve.Service](di),
		sessions: do.MustInvoke[*session.Service](di),
	}

	s.srv = server.NewMCPServer(
		"petsync",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)

	s.srv.AddTool(mcp.NewTool("ensure_customer_exists",
		mcp.WithDescription("Find or create the customer record for the conversation. Matches by email, then phone, then name."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session id shared by all tool calls")),
		mcp.WithString("name", mcp.Description("Customer full name")),
		mcp.WithString("email", mcp.Description("Customer email")),
		mcp.WithString("phone", mcp.Description("Customer phone")),
	), s.handleCustomer)

	s.srv.AddTool(mcp.NewTool("ensure_pets_exist",
		mcp.WithDescription("Reconcile the mentioned pets against the resolved customer's roster. Requires ensure_customer_exists first."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session id shared by all tool calls")),
		mcp.WithString("pets_json", mcp.Required(), mcp.Description(`JSON array of pets: [{"name":"","species":"","breed":"","gender":"","notes":""}]`)),
	), s.handlePets)

	s.srv.AddTool(mcp.NewTool("ensure_service_matched",
		mcp.WithDescription("Match a free-text service request against the professional's active catalog."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session id shared by all tool calls")),
		mcp.WithString("request", mcp.Required(), mcp.Description("The customer's own words for the service they need")),
	), s.handleService)

	s.srv.AddTool(mcp.NewTool("calculate_dates",
		mcp.WithDescription("Resolve a natural-language date phrase into a concrete booking window."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session id shared by all tool calls")),
		mcp.WithString("phrase", mcp.Required(), mcp.Description("Verbatim date wording, e.g. 'next weekend, 8AM Saturday to 6PM Sunday'")),
	), s.handleDates)

	s.srv.AddTool(mcp.NewTool("ensure_booking_exists",
		mcp.WithDescription("Create or reconcile the booking from the session's resolved customer, pets, service and dates."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session id shared by all tool calls")),
		mcp.WithString("notes", mcp.Description("Special instructions for the booking")),
	), s.handleBooking)

	return s, nil
}

// Run serves MCP over stdio until the transport closes.
func (s *Service) Run(_ context.Context) error {
	if err := server.ServeStdio(s.srv); err != nil {
		return oops.Wrapf(err, "mcp server failed")
	}

	return nil
}

func (s *Service) state(req mcp.CallToolRequest) (*session.State, map[string]any) {
	args := req.GetArguments()
	sessionID, _ := args["session_id"].(string)

	return s.sessions.Obtain(sessionID), args
}

func toolResult(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}

func (s *Service) handleCustomer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, args := s.state(req)

	name, _ := args["name"].(string)
	email, _ := args["email"].(string)
	phone, _ := args["phone"].(string)

	result, err := s.resolver.EnsureCustomerExists(ctx, st, resolve.CustomerInput{
		ProfessionalID: s.cfg.Pipeline.ProfessionalID,
		Name:           name,
		Email:          email,
		Phone:          phone,
	})

	return toolResult(result, err)
}

func (s *Service) handlePets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, args := s.state(req)

	petsJSON, _ := args["pets_json"].(string)

	var pets []resolve.PetInput
	if err := json.Unmarshal([]byte(petsJSON), &pets); err != nil {
		return mcp.NewToolResultError("pets_json must be a JSON array of pets: " + err.Error()), nil
	}

	result, err := s.resolver.EnsurePetsExist(ctx, st, pets)
	return toolResult(result, err)
}

func (s *Service) handleService(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, args := s.state(req)

	request, _ := args["request"].(string)

	result, err := s.resolver.EnsureServiceMatched(ctx, st, request)
	return toolResult(result, err)
}

func (s *Service) handleDates(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, args := s.state(req)

	phrase, _ := args["phrase"].(string)

	result, err := s.resolver.CalculateDates(st, phrase, nil)
	return toolResult(result, err)
}

func (s *Service) handleBooking(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	st, args := s.state(req)

	notes, _ := args["notes"].(string)

	result, err := s.resolver.EnsureBookingExists(ctx, st, resolve.BookingInput{
		ProfessionalID: s.cfg.Pipeline.ProfessionalID,
		Notes:          notes,
	})

	return toolResult(result, err)
}
