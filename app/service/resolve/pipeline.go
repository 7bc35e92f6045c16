package resolve

import (
	"context"
	"log/slog"

	"petsync/app/service/session"
)

// RunPipeline executes the five resolution stages for one conversational
// turn, strictly in order: customer, pets, service, dates, booking. The first
// non-success status halts the run; later stages never execute on top of an
// unresolved prerequisite. Turns of the same session are serialized.
func (s *Service) RunPipeline(ctx context.Context, st *session.State, in TurnInput) (*PipelineResult, error) {
	release := st.BeginTurn()
	defer release()

	if in.ProfessionalID == "" {
		in.ProfessionalID = s.cfg.Pipeline.ProfessionalID
	}

	result := &PipelineResult{}

	customer, err := s.EnsureCustomerExists(ctx, st, CustomerInput{
		ProfessionalID: in.ProfessionalID,
		Name:           in.CustomerName,
		Email:          in.CustomerEmail,
		Phone:          in.CustomerPhone,
	})
	result.Customer = customer
	if err != nil || !isSuccess(customer.Status) {
		return s.halt(st, result, StageCustomer, customer.Status, customer.Message), err
	}

	pets, err := s.EnsurePetsExist(ctx, st, in.Pets)
	result.Pets = pets
	if err != nil || !isSuccess(pets.Status) {
		return s.halt(st, result, StagePet, pets.Status, pets.Message), err
	}

	service, err := s.EnsureServiceMatched(ctx, st, in.ServiceRequest)
	result.Service = service
	if err != nil || !isSuccess(service.Status) {
		return s.halt(st, result, StageService, service.Status, service.Message), err
	}

	dates, err := s.CalculateDates(st, in.DatePhrase, in.DateHistory)
	if err != nil {
		return s.halt(st, result, StageDate, StatusInsufficientData, err.Error()), nil
	}
	result.Dates = dates

	booking, err := s.EnsureBookingExists(ctx, st, BookingInput{
		ProfessionalID: in.ProfessionalID,
		Notes:          in.Notes,
	})
	result.Booking = booking
	if err != nil || !isSuccess(booking.Status) {
		return s.halt(st, result, StageBooking, booking.Status, booking.Message), err
	}

	result.Status = booking.Status

	slog.Info("pipeline completed",
		"session_id", st.ID(),
		"booking_id", booking.BookingID,
		"action", booking.ActionTaken)

	return result, nil
}

func (s *Service) halt(st *session.State, result *PipelineResult, stage, status, msg string) *PipelineResult {
	result.Halted = stage
	result.Status = status
	result.Message = msg

	slog.Warn("pipeline halted",
		"session_id", st.ID(),
		"stage", stage,
		"status", status,
		"message", msg)

	return result
}
