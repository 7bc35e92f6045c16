package resolve

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/oops"

	"petsync/app/client/petpro"
	"petsync/app/service/match"
	"petsync/app/service/session"
)

// EnsureCustomerExists resolves the conversational customer identity against
// the remote roster, creating a record only when no candidate matches and the
// input carries at least one identifying field. The roster is fetched at most
// once per session.
func (s *Service) EnsureCustomerExists(ctx context.Context, st *session.State, in CustomerInput) (*CustomerResult, error) {
	if in.ProfessionalID == "" {
		in.ProfessionalID = s.cfg.Pipeline.ProfessionalID
	}

	result := &CustomerResult{
		ProfessionalID: in.ProfessionalID,
	}

	summary, cached := session.Extracted[session.CustomerSummary](st, session.StageCustomerProfile)

	if !in.HasIdentity() {
		if cached && summary.CustomerID != "" {
			result.CustomerID = summary.CustomerID
			result.CustomerName = resolvedName(summary)
			result.ExistingPets = summary.ExistingPets
			result.Status = StatusFound
			result.Source = SourceState
			return result, nil
		}

		result.Status = StatusInsufficientData
		result.Message = "no name, email or phone to identify the customer"
		return result, nil
	}

	candidates := summary.Customers
	if !cached {
		fetched, err := s.api.ListCustomers(ctx, in.ProfessionalID)
		if err != nil {
			result.Status = StatusError
			result.Message = err.Error()
			return result, oops.Wrapf(err, "customer stage failed")
		}

		candidates = fetched
	}

	matched := match.Customer(candidates, in.Email, in.Phone, in.Name)
	if matched != nil {
		result.CustomerID = matched.ID
		result.CustomerName = matched.FullName()
		result.ExistingPets = matched.Pets
		result.Status = StatusFound
		result.Source = SourceState
		if !cached {
			result.Source = SourceAPI
		}

		s.storeCustomer(st, candidates, matched, result.Status)
		return result, nil
	}

	created, err := s.api.CreateCustomer(ctx, s.buildCustomer(in))
	if err != nil {
		result.Status = StatusError
		result.Message = err.Error()
		return result, oops.Wrapf(err, "customer stage failed")
	}

	slog.Info("created customer",
		"customer_id", created.ID,
		"professional_id", in.ProfessionalID)

	candidates = append(candidates, *created)

	result.CustomerID = created.ID
	result.CustomerName = created.FullName()
	result.ExistingPets = created.Pets
	result.Status = StatusCreated
	result.Source = SourceAPI
	result.Message = fmt.Sprintf("created customer %s", created.FullName())

	s.storeCustomer(st, candidates, created, result.Status)
	return result, nil
}

func (s *Service) buildCustomer(in CustomerInput) petpro.Customer {
	first, last := splitName(in.Name)

	return petpro.Customer{
		FirstName:      first,
		LastName:       last,
		Email:          in.Email,
		Phone:          match.NormalizePhone(in.Phone),
		ProfessionalID: in.ProfessionalID,
	}
}

func (s *Service) storeCustomer(st *session.State, candidates []petpro.Customer, resolved *petpro.Customer, status string) {
	s.record(st, session.StageCustomerProfile, candidates, session.CustomerSummary{
		CustomerID:     resolved.ID,
		ProfessionalID: resolved.ProfessionalID,
		Customers:      candidates,
		ExistingPets:   resolved.Pets,
		Status:         status,
	})
}

func resolvedName(summary session.CustomerSummary) string {
	for i := range summary.Customers {
		if summary.Customers[i].ID == summary.CustomerID {
			return summary.Customers[i].FullName()
		}
	}

	return ""
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}

	return parts[0], strings.Join(parts[1:], " ")
}
