package resolve

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/oops"

	"petsync/app/client/petpro"
	"petsync/app/service/session"
)

// EnsureBookingExists creates or reconciles the booking for the session's
// resolved customer, pets, service and dates. All preconditions are checked
// before any remote call: a turn that cannot possibly book makes zero writes.
// An overlapping scheduled booking for the same customer and the same pet set
// is treated as the same booking and updated in place rather than duplicated.
func (s *Service) EnsureBookingExists(ctx context.Context, st *session.State, in BookingInput) (*BookingResult, error) {
	if in.ProfessionalID == "" {
		in.ProfessionalID = s.cfg.Pipeline.ProfessionalID
	}

	result := &BookingResult{
		ProfessionalID: in.ProfessionalID,
	}

	customer, ok := session.Extracted[session.CustomerSummary](st, session.StageCustomerProfile)
	if !ok || customer.CustomerID == "" {
		result.Status = StatusInsufficientData
		result.Message = "customer must be resolved before booking"
		return result, nil
	}
	result.CustomerID = customer.CustomerID

	petSummary, ok := session.Extracted[session.PetSummary](st, session.StagePetResult)
	if !ok || len(petSummary.PetIDs) == 0 {
		result.Status = StatusInsufficientData
		result.Message = "pets must be resolved before booking"
		return result, nil
	}
	result.PetIDs = petSummary.PetIDs

	service, ok := session.Extracted[session.ServiceSummary](st, session.StageServiceResult)
	if !ok || service.ServiceID == "" {
		result.Status = StatusInsufficientData
		result.Message = "service must be resolved before booking"
		return result, nil
	}
	if service.ServiceRateID == "" {
		result.Status = StatusRateMissing
		result.Message = "service has no configured rate"
		return result, nil
	}
	result.ServiceID = service.ServiceID
	result.ServiceName = service.ServiceName
	result.ServiceRateID = service.ServiceRateID

	dates, ok := session.Extracted[session.DateSummary](st, session.StageDateResult)
	if !ok || dates.StartDate == "" {
		result.Status = StatusInsufficientData
		result.Message = "dates must be resolved before booking"
		return result, nil
	}
	result.StartDate = dates.StartDate
	result.EndDate = dates.EndDate
	result.StartTime = dates.StartTime
	result.EndTime = dates.EndTime

	bookings, cached := session.Extracted[[]petpro.Booking](st, session.StageBookings)
	if !cached {
		fetched, err := s.api.ListBookings(ctx, in.ProfessionalID)
		if err != nil {
			result.Status = StatusError
			result.Message = err.Error()
			return result, oops.Wrapf(err, "booking stage failed")
		}

		bookings = fetched
	}

	existing := findConflict(bookings, customer.CustomerID, petSummary.PetIDs, dates)
	if existing != nil {
		result.ExistingBookingFound = true
		result.ExistingBookingID = existing.ID
		result.BookingID = existing.ID

		changed := mergeBooking(existing, service, dates, in.Notes)
		if !changed {
			result.ActionTaken = "no_changes"
			result.Status = StatusNoChanges
			result.Source = SourceState

			s.storeBooking(st, bookings, result)
			return result, nil
		}

		updated, err := s.api.UpdateBooking(ctx, existing.ID, *existing)
		if err != nil {
			result.Status = StatusError
			result.Message = err.Error()
			return result, oops.Wrapf(err, "booking stage failed")
		}

		for i := range bookings {
			if bookings[i].ID == updated.ID {
				bookings[i] = *updated
			}
		}

		result.ActionTaken = "updated"
		result.Status = StatusUpdated
		result.Source = SourceAPI

		slog.Info("updated booking",
			"booking_id", updated.ID,
			"customer_id", customer.CustomerID)

		s.storeBooking(st, bookings, result)
		return result, nil
	}

	created, err := s.api.CreateBooking(ctx, petpro.Booking{
		ClientID:       customer.CustomerID,
		ServiceID:      service.ServiceID,
		ServiceRateID:  service.ServiceRateID,
		ProfessionalID: in.ProfessionalID,
		StartDate:      dates.StartDate,
		EndDate:        dates.EndDate,
		StartTime:      dates.StartTime,
		EndTime:        dates.EndTime,
		TotalAmount:    service.ServiceRate,
		Notes:          in.Notes,
		Status:         petpro.BookingScheduled,
		ExtraPetFee:    0,
		WeekendFee:     0,
		BookingPets: pie.Map(petSummary.PetIDs, func(id string) petpro.BookingPet {
			return petpro.BookingPet{PetID: id}
		}),
	})
	if err != nil {
		result.Status = StatusError
		result.Message = err.Error()
		return result, oops.Wrapf(err, "booking stage failed")
	}

	bookings = append(bookings, *created)

	result.BookingID = created.ID
	result.ActionTaken = "created"
	result.Status = StatusCreated
	result.Source = SourceAPI

	slog.Info("created booking",
		"booking_id", created.ID,
		"customer_id", customer.CustomerID,
		"start_date", dates.StartDate)

	s.storeBooking(st, bookings, result)
	return result, nil
}

func (s *Service) storeBooking(st *session.State, bookings []petpro.Booking, result *BookingResult) {
	s.record(st, session.StageBookings, bookings, bookings)
	s.record(st, session.StageBookingResult, result, session.BookingSummary{
		BookingID:   result.BookingID,
		ActionTaken: result.ActionTaken,
		Status:      result.Status,
	})
}

// findConflict returns the scheduled booking of the same customer whose pet
// set equals the requested one and whose date range overlaps the requested
// window. A booking for a different pet set is a different engagement and
// never a conflict.
func findConflict(bookings []petpro.Booking, customerID string, petIDs []string, dates session.DateSummary) *petpro.Booking {
	want := sortedIDs(petIDs)

	for i := range bookings {
		b := &bookings[i]
		if b.ClientID != customerID || b.Status != petpro.BookingScheduled {
			continue
		}

		if !equalIDs(want, sortedIDs(b.PetIDs())) {
			continue
		}

		if dateOnly(dates.StartDate) <= dateOnly(b.EndDate) && dateOnly(dates.EndDate) >= dateOnly(b.StartDate) {
			return b
		}
	}

	return nil
}

// mergeBooking copies the requested fields onto the existing booking,
// reporting whether anything actually differed. Times are compared in
// normalized HH:MM form since the remote may return seconds. Empty notes
// leave the stored instructions alone.
func mergeBooking(existing *petpro.Booking, service session.ServiceSummary, dates session.DateSummary, notes string) bool {
	changed := false

	if dateOnly(existing.StartDate) != dates.StartDate {
		existing.StartDate = dates.StartDate
		changed = true
	}
	if dateOnly(existing.EndDate) != dates.EndDate {
		existing.EndDate = dates.EndDate
		changed = true
	}
	if clockOnly(existing.StartTime) != dates.StartTime {
		existing.StartTime = dates.StartTime
		changed = true
	}
	if clockOnly(existing.EndTime) != dates.EndTime {
		existing.EndTime = dates.EndTime
		changed = true
	}
	if existing.ServiceID != service.ServiceID {
		existing.ServiceID = service.ServiceID
		existing.ServiceRateID = service.ServiceRateID
		changed = true
	}
	if notes != "" && existing.Notes != notes {
		existing.Notes = notes
		changed = true
	}

	return changed
}

func dateOnly(value string) string {
	if len(value) > len(dateLayout) {
		return value[:len(dateLayout)]
	}

	return value
}

func clockOnly(value string) string {
	if len(value) > len(timeLayout) {
		return value[:len(timeLayout)]
	}

	return value
}

func sortedIDs(ids []string) []string {
	out := pie.Unique(ids)
	sort.Strings(out)
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}

	return true
}
