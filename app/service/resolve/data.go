package resolve

import "petsync/app/client/petpro"

// Stage result statuses. The first group reports success, the second group is
// terminal: later stages observe it and refuse to proceed.
const (
	StatusFound     = "found"
	StatusCreated   = "created"
	StatusUpdated   = "updated"
	StatusMatched   = "matched"
	StatusNoChanges = "no_changes"

	StatusInsufficientData = "insufficient_data"
	StatusRateMissing      = "rate_missing"
	StatusNotFound         = "not_found"
	StatusError            = "error"
)

// Sources a stage result can originate from.
const (
	SourceState = "state"
	SourceAPI   = "api"
)

// Pipeline stage names, in execution order.
const (
	StageCustomer = "customer"
	StagePet      = "pet"
	StageService  = "service"
	StageDate     = "date"
	StageBooking  = "booking"
)

func isSuccess(status string) bool {
	switch status {
	case StatusFound, StatusCreated, StatusUpdated, StatusMatched, StatusNoChanges:
		return true
	default:
		return false
	}
}

type CustomerInput struct {
	ProfessionalID string `json:"professional_id" validate:"required"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
}

// HasIdentity reports whether the input carries any identifying field. Without
// one the customer stage must not attempt a create.
func (in *CustomerInput) HasIdentity() bool {
	return in.Name != "" || in.Email != "" || in.Phone != ""
}

type CustomerResult struct {
	CustomerID     string       `json:"customer_id"`
	ProfessionalID string       `json:"professional_id"`
	CustomerName   string       `json:"customer_name"`
	ExistingPets   []petpro.Pet `json:"existing_pets"`
	Status         string       `json:"status"`
	Source         string       `json:"source"`
	Message        string       `json:"message,omitempty"`
}

type PetInput struct {
	Name    string `json:"name" validate:"required"`
	Species string `json:"species"`
	Breed   string `json:"breed"`
	Age     int    `json:"age,omitempty"`
	Gender  string `json:"gender,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type PetResult struct {
	CustomerID     string   `json:"customer_id"`
	ProfessionalID string   `json:"professional_id"`
	PetIDs         []string `json:"pet_ids"`
	PetNames       []string `json:"pet_names"`
	PetSpecies     []string `json:"pet_species"`
	Status         string   `json:"status"`
	Source         string   `json:"source"`
	Message        string   `json:"message,omitempty"`
}

type ServiceResult struct {
	ServiceID         string   `json:"service_id"`
	ProfessionalID    string   `json:"professional_id"`
	ServiceName       string   `json:"service_name"`
	ServiceRateID     string   `json:"service_rate_id"`
	ServiceRate       *float64 `json:"service_rate"`
	AvailableServices []string `json:"available_services,omitempty"`
	Status            string   `json:"status"`
	Source            string   `json:"source"`
	Message           string   `json:"message,omitempty"`
}

type DateResult struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type BookingInput struct {
	ProfessionalID string `json:"professional_id" validate:"required"`
	Notes          string `json:"notes,omitempty"`
}

type BookingResult struct {
	CustomerID           string   `json:"customer_id"`
	ProfessionalID       string   `json:"professional_id"`
	PetIDs               []string `json:"pet_ids"`
	ServiceID            string   `json:"service_id"`
	ServiceName          string   `json:"service_name"`
	ServiceRateID        string   `json:"service_rate_id"`
	StartDate            string   `json:"start_date"`
	EndDate              string   `json:"end_date"`
	StartTime            string   `json:"start_time"`
	EndTime              string   `json:"end_time"`
	ExistingBookingFound bool     `json:"existing_booking_found"`
	ExistingBookingID    string   `json:"existing_booking_id,omitempty"`
	ActionTaken          string   `json:"action_taken"`
	BookingID            string   `json:"booking_id"`
	Status               string   `json:"status"`
	Source               string   `json:"source"`
	Message              string   `json:"message,omitempty"`
}

// TurnInput is everything extracted from one conversational turn.
type TurnInput struct {
	ProfessionalID string     `json:"professional_id" validate:"required"`
	CustomerName   string     `json:"customer_name"`
	CustomerEmail  string     `json:"customer_email"`
	CustomerPhone  string     `json:"customer_phone"`
	Pets           []PetInput `json:"pets"`
	ServiceRequest string     `json:"service_request"`
	DatePhrase     string     `json:"date_phrase"`
	DateHistory    []string   `json:"date_history,omitempty"`
	Notes          string     `json:"notes,omitempty"`
}

// PipelineResult aggregates the per-stage outcomes of one turn. Halted names
// the first stage that reported a terminal status, empty when all five ran.
type PipelineResult struct {
	Customer *CustomerResult `json:"customer,omitempty"`
	Pets     *PetResult      `json:"pets,omitempty"`
	Service  *ServiceResult  `json:"service,omitempty"`
	Dates    *DateResult     `json:"dates,omitempty"`
	Booking  *BookingResult  `json:"booking,omitempty"`
	Status   string          `json:"status"`
	Halted   string          `json:"halted_stage,omitempty"`
	Message  string          `json:"message,omitempty"`
}
