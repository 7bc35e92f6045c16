package session

import (
	"time"

	"petsync/app/client/petpro"
)

// Stage keys under which resolution stages file their results. Once a stage
// writes its record, it is authoritative for every later stage in the turn.
const (
	StageCustomerProfile = "customer_profile"
	StagePetResult       = "pet_result"
	StageServiceCatalog  = "service_catalog"
	StageServiceResult   = "service_result"
	StageDateResult      = "date_result"
	StageBookings        = "bookings"
	StageBookingResult   = "booking_result"
)

// Record is one cached stage outcome: the raw remote response alongside the
// extracted summary later stages consume.
type Record struct {
	FullResponse any
	Extracted    any
	Timestamp    time.Time
}

type CustomerSummary struct {
	CustomerID     string
	ProfessionalID string
	Customers      []petpro.Customer
	ExistingPets   []petpro.Pet
	Status         string
}

type PetSummary struct {
	PetIDs   []string
	PetNames []string
	Status   string
}

type ServiceSummary struct {
	ServiceID     string
	ServiceName   string
	ServiceRateID string
	ServiceRate   *float64
	Request       string
	Status        string
}

type DateSummary struct {
	StartDate string
	EndDate   string
	StartTime string
	EndTime   string
}

type BookingSummary struct {
	BookingID   string
	ActionTaken string
	Status      string
}
