package petpro

import "strings"

// Booking status values used by the remote API.
const (
	BookingScheduled = "scheduled"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

type Customer struct {
	ID             string `json:"id,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
	FirstName      string `json:"firstName"`
	LastName       string `json:"lastName"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Address        string `json:"address"`
	ProfessionalID string `json:"professionalId"`
	Pets           []Pet  `json:"pets,omitempty"`
}

// FullName returns the normalized "first last" form used for name matching.
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

type Pet struct {
	// ID present means an existing record (update path), absent means create.
	ID              string `json:"id,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
	UpdatedAt       string `json:"updatedAt,omitempty"`
	OwnerID         string `json:"ownerId"`
	Name            string `json:"name"`
	Species         string `json:"species"`
	Breed           string `json:"breed"`
	DateOfBirth     string `json:"dateOfBirth,omitempty"`
	Gender          string `json:"gender,omitempty"`
	Color           string `json:"color,omitempty"`
	MicrochipNumber string `json:"microchipNumber,omitempty"`
	Neutered        bool   `json:"neutered,omitempty"`
	Vaccinations    string `json:"vaccinations,omitempty"`
	Notes           string `json:"notes,omitempty"`
	ImageURL        string `json:"imageUrl,omitempty"`
	Active          bool   `json:"active,omitempty"`
}

type Service struct {
	ID                  string                `json:"id"`
	CreatedAt           string                `json:"createdAt,omitempty"`
	UpdatedAt           string                `json:"updatedAt,omitempty"`
	Name                string                `json:"name"`
	Description         string                `json:"description,omitempty"`
	Notes               string                `json:"notes,omitempty"`
	Amount              *float64              `json:"amount,omitempty"`
	Duration            int                   `json:"duration,omitempty"`
	DurationType        string                `json:"durationType,omitempty"`
	ProfessionalID      string                `json:"professionalId"`
	Active              bool                  `json:"active"`
	Archived            bool                  `json:"archived"`
	ServiceRate         *ServiceRate          `json:"serviceRate,omitempty"`
	ServiceAvailability []ServiceAvailability `json:"serviceAvailability,omitempty"`
}

// HasRate reports whether the service carries a configured rate. Booking
// creation is blocked for services without one.
func (s *Service) HasRate() bool {
	return s.ServiceRate != nil && s.ServiceRate.ID != ""
}

type ServiceRate struct {
	ID        string   `json:"id,omitempty"`
	ServiceID string   `json:"serviceId,omitempty"`
	Amount    *float64 `json:"amount,omitempty"`
	Currency  string   `json:"currency,omitempty"`
}

type ServiceAvailability struct {
	Day           string `json:"day"`
	TimeBlock     string `json:"timeBlock"`
	TimeBlockName string `json:"timeBlockName,omitempty"`
	ServiceID     string `json:"serviceId,omitempty"`
}

type Booking struct {
	ID                string       `json:"id,omitempty"`
	CreatedAt         string       `json:"createdAt,omitempty"`
	UpdatedAt         string       `json:"updatedAt,omitempty"`
	ClientID          string       `json:"clientId"`
	ServiceID         string       `json:"serviceId"`
	ServiceRateID     string       `json:"serviceRateId,omitempty"`
	ProfessionalID    string       `json:"professionalId"`
	StartDate         string       `json:"startDate"`
	EndDate           string       `json:"endDate"`
	StartTime         string       `json:"startTime"`
	EndTime           string       `json:"endTime"`
	TotalAmount       *float64     `json:"totalAmount,omitempty"`
	Notes             string       `json:"notes,omitempty"`
	Status            string       `json:"status,omitempty"`
	ExtraPetFee       float64      `json:"extraPetFee"`
	HolidayFee        float64      `json:"holidayFee,omitempty"`
	AfterHourFee      float64      `json:"afterHourFee,omitempty"`
	WeekendFee        float64      `json:"weekendFee"`
	ExtraChargesTotal float64      `json:"extraChargesTotal,omitempty"`
	BookingPets       []BookingPet `json:"bookingPets"`
	AllDay            bool         `json:"allDay,omitempty"`
}

// PetIDs returns the ids of all pets attached to the booking.
func (b *Booking) PetIDs() []string {
	ids := make([]string, 0, len(b.BookingPets))
	for _, bp := range b.BookingPets {
		if bp.PetID != "" {
			ids = append(ids, bp.PetID)
		}
	}
	return ids
}

type BookingPet struct {
	PetID               string `json:"petId"`
	SpecialInstructions string `json:"specialInstructions,omitempty"`
}
