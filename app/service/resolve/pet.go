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

// Gender the remote API requires on create when the conversation never
// mentioned one.
const defaultPetGender = "Male"

// EnsurePetsExist reconciles the mentioned pets against the resolved
// customer's roster. Matched pets are reused, matched pets with a differing
// breed are corrected, unknown pets are created. All writes go out as a
// single pet upsert per turn.
func (s *Service) EnsurePetsExist(ctx context.Context, st *session.State, pets []PetInput) (*PetResult, error) {
	result := &PetResult{
		ProfessionalID: s.professionalID(st),
	}

	customer, ok := session.Extracted[session.CustomerSummary](st, session.StageCustomerProfile)
	if !ok || customer.CustomerID == "" {
		result.Status = StatusInsufficientData
		result.Message = "customer must be resolved before pets"
		return result, nil
	}

	result.CustomerID = customer.CustomerID

	if len(pets) == 0 {
		// An amendment turn may carry no pets at all; the ones resolved
		// earlier in the session still apply.
		if prev, ok := session.Extracted[session.PetSummary](st, session.StagePetResult); ok && len(prev.PetIDs) > 0 {
			result.PetIDs = prev.PetIDs
			result.PetNames = prev.PetNames
			result.Status = StatusFound
			result.Source = SourceState
			return result, nil
		}

		result.Status = StatusInsufficientData
		result.Message = "no pets mentioned"
		return result, nil
	}

	roster := append([]petpro.Pet(nil), customer.ExistingPets...)
	dirty := false
	anyUpdate := false

	for _, in := range pets {
		if in.Name == "" {
			result.Status = StatusInsufficientData
			result.Message = "pet without a name"
			return result, nil
		}

		existing := match.Pet(roster, in.Name, s.sim)
		if existing != nil {
			if in.Breed != "" && !strings.EqualFold(in.Breed, existing.Breed) {
				existing.Breed = in.Breed
				dirty = true
				anyUpdate = true
			}

			result.PetIDs = append(result.PetIDs, existing.ID)
			result.PetNames = append(result.PetNames, existing.Name)
			result.PetSpecies = append(result.PetSpecies, existing.Species)
			continue
		}

		if in.Species == "" {
			result.Status = StatusInsufficientData
			result.Message = fmt.Sprintf("species is required to create pet %q", in.Name)
			return result, nil
		}

		gender := in.Gender
		if gender == "" {
			gender = defaultPetGender
		}

		roster = append(roster, petpro.Pet{
			OwnerID: customer.CustomerID,
			Name:    in.Name,
			Species: in.Species,
			Breed:   in.Breed,
			Gender:  gender,
			Notes:   in.Notes,
		})
		dirty = true

		result.PetNames = append(result.PetNames, in.Name)
		result.PetSpecies = append(result.PetSpecies, in.Species)
	}

	if !dirty {
		result.Status = StatusFound
		result.Source = SourceState

		s.storePets(st, customer, roster, result)
		return result, nil
	}

	updated, err := s.api.UpdateCustomerPets(ctx, petpro.Customer{
		ID:             customer.CustomerID,
		ProfessionalID: customer.ProfessionalID,
		Pets:           roster,
	})
	if err != nil {
		result.Status = StatusError
		result.Message = err.Error()
		return result, oops.Wrapf(err, "pet stage failed")
	}

	roster = updated.Pets
	result.PetIDs = resolvePetIDs(roster, result.PetNames)
	result.Source = SourceAPI
	if anyUpdate {
		result.Status = StatusUpdated
	} else {
		result.Status = StatusCreated
	}

	slog.Info("upserted pets",
		"customer_id", customer.CustomerID,
		"pets", result.PetNames,
		"status", result.Status)

	s.storePets(st, customer, roster, result)
	return result, nil
}

func (s *Service) storePets(st *session.State, customer session.CustomerSummary, roster []petpro.Pet, result *PetResult) {
	s.record(st, session.StagePetResult, roster, session.PetSummary{
		PetIDs:   result.PetIDs,
		PetNames: result.PetNames,
		Status:   result.Status,
	})

	customer.ExistingPets = roster
	s.record(st, session.StageCustomerProfile, customer.Customers, customer)
}

// resolvePetIDs maps the turn's pet names back to the ids the remote assigned,
// preserving the mention order.
func resolvePetIDs(roster []petpro.Pet, names []string) []string {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		for i := range roster {
			if strings.EqualFold(roster[i].Name, name) {
				ids = append(ids, roster[i].ID)
				break
			}
		}
	}

	return ids
}
