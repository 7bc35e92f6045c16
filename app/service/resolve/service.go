package resolve

import (
	"context"
	"time"

	"github.com/samber/do"

	"petsync/app/client/petpro"
	"petsync/app/config"
	"petsync/app/service/match"
	"petsync/app/service/session"
)

// api is the slice of the remote client the resolver needs.
type api interface {
	ListCustomers(ctx context.Context, professionalID string) ([]petpro.Customer, error)
	CreateCustomer(ctx context.Context, customer petpro.Customer) (*petpro.Customer, error)
	UpdateCustomerPets(ctx context.Context, customer petpro.Customer) (*petpro.Customer, error)
	ListServices(ctx context.Context, professionalID string) ([]petpro.Service, error)
	ListBookings(ctx context.Context, professionalID string) ([]petpro.Booking, error)
	CreateBooking(ctx context.Context, booking petpro.Booking) (*petpro.Booking, error)
	UpdateBooking(ctx context.Context, bookingID string, booking petpro.Booking) (*petpro.Booking, error)
}

type Service struct {
	cfg     *config.Config
	api     api
	sim     match.Similarity
	nowFunc func() time.Time
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)
	client := do.MustInvoke[*petpro.Client](di)

	return newService(cfg, client), nil
}

func newService(cfg *config.Config, api api) *Service {
	s := &Service{
		cfg:     cfg,
		api:     api,
		sim:     match.NewIndelSimilarity(),
		nowFunc: time.Now,
	}

	if cfg.Pipeline.CurrentDate != "" {
		if anchor, err := time.Parse("2006-01-02", cfg.Pipeline.CurrentDate); err == nil {
			s.nowFunc = func() time.Time {
				return anchor
			}
		}
	}

	return s
}

// professionalID prefers the professional the session's customer belongs to,
// falling back to the configured default before any customer is resolved.
func (s *Service) professionalID(st *session.State) string {
	if customer, ok := session.Extracted[session.CustomerSummary](st, session.StageCustomerProfile); ok {
		if customer.ProfessionalID != "" {
			return customer.ProfessionalID
		}
	}

	return s.cfg.Pipeline.ProfessionalID
}

func (s *Service) record(st *session.State, stage string, full, extracted any) {
	st.Put(stage, session.Record{
		FullResponse: full,
		Extracted:    extracted,
		Timestamp:    s.nowFunc(),
	})
}
