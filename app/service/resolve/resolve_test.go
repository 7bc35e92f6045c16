package resolve

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petsync/app/client/petpro"
	"petsync/app/config"
	"petsync/app/service/session"
)

type fakeAPI struct {
	customers []petpro.Customer
	services  []petpro.Service
	bookings  []petpro.Booking

	listCustomersCalls int
	createCustomers    int
	updatePetsCalls    int
	listServicesCalls  int
	listBookingsCalls  int
	createBookings     int
	updateBookings     int

	nextID int
}

func (f *fakeAPI) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeAPI) ListCustomers(_ context.Context, _ string) ([]petpro.Customer, error) {
	f.listCustomersCalls++
	return append([]petpro.Customer(nil), f.customers...), nil
}

func (f *fakeAPI) CreateCustomer(_ context.Context, customer petpro.Customer) (*petpro.Customer, error) {
	f.createCustomers++
	customer.ID = f.id("cust")
	f.customers = append(f.customers, customer)
	return &customer, nil
}

func (f *fakeAPI) UpdateCustomerPets(_ context.Context, customer petpro.Customer) (*petpro.Customer, error) {
	f.updatePetsCalls++

	for i := range customer.Pets {
		if customer.Pets[i].ID == "" {
			customer.Pets[i].ID = f.id("pet")
		}
	}

	for i := range f.customers {
		if f.customers[i].ID == customer.ID {
			f.customers[i].Pets = customer.Pets
		}
	}

	return &customer, nil
}

func (f *fakeAPI) ListServices(_ context.Context, _ string) ([]petpro.Service, error) {
	f.listServicesCalls++
	return append([]petpro.Service(nil), f.services...), nil
}

func (f *fakeAPI) ListBookings(_ context.Context, _ string) ([]petpro.Booking, error) {
	f.listBookingsCalls++
	return append([]petpro.Booking(nil), f.bookings...), nil
}

func (f *fakeAPI) CreateBooking(_ context.Context, booking petpro.Booking) (*petpro.Booking, error) {
	f.createBookings++
	booking.ID = f.id("bk")
	f.bookings = append(f.bookings, booking)
	return &booking, nil
}

func (f *fakeAPI) UpdateBooking(_ context.Context, bookingID string, booking petpro.Booking) (*petpro.Booking, error) {
	f.updateBookings++
	booking.ID = bookingID

	for i := range f.bookings {
		if f.bookings[i].ID == bookingID {
			f.bookings[i] = booking
		}
	}

	return &booking, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Pipeline: config.Pipeline{
			ProfessionalID: "pro-1",
			CurrentDate:    "2024-11-27",
		},
	}
}

func testState(t *testing.T) *session.State {
	t.Helper()

	sessions, err := session.New(nil)
	require.NoError(t, err)

	return sessions.Obtain(t.Name())
}

func rateService(name string, amount float64) petpro.Service {
	return petpro.Service{
		ID:             "svc-" + name,
		Name:           name,
		ProfessionalID: "pro-1",
		Active:         true,
		ServiceRate: &petpro.ServiceRate{
			ID:     "rate-" + name,
			Amount: &amount,
		},
	}
}

func TestEnsureCustomerCreatesOnceThenFindsFromState(t *testing.T) {
	fake := &fakeAPI{}
	svc := newService(testConfig(), fake)
	st := testState(t)

	in := CustomerInput{Name: "Alice Walker", Email: "alice@example.com"}

	first, err := svc.EnsureCustomerExists(context.Background(), st, in)
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, first.Status)
	assert.NotEmpty(t, first.CustomerID)
	assert.Equal(t, 1, fake.listCustomersCalls)
	assert.Equal(t, 1, fake.createCustomers)

	second, err := svc.EnsureCustomerExists(context.Background(), st, in)
	require.NoError(t, err)
	assert.Equal(t, StatusFound, second.Status)
	assert.Equal(t, SourceState, second.Source)
	assert.Equal(t, first.CustomerID, second.CustomerID)
	assert.Equal(t, 1, fake.listCustomersCalls, "roster must not be re-fetched")
	assert.Equal(t, 1, fake.createCustomers, "no duplicate create")
}

func TestEnsureCustomerWithoutIdentityMakesNoRemoteCalls(t *testing.T) {
	fake := &fakeAPI{}
	svc := newService(testConfig(), fake)
	st := testState(t)

	result, err := svc.EnsureCustomerExists(context.Background(), st, CustomerInput{})
	require.NoError(t, err)
	assert.Equal(t, StatusInsufficientData, result.Status)
	assert.Zero(t, fake.listCustomersCalls)
	assert.Zero(t, fake.createCustomers)
}

func TestEnsureCustomerWithoutIdentityReusesResolvedCustomer(t *testing.T) {
	fake := &fakeAPI{}
	svc := newService(testConfig(), fake)
	st := testState(t)

	first, err := svc.EnsureCustomerExists(context.Background(), st, CustomerInput{Name: "Alice Walker"})
	require.NoError(t, err)
	require.Equal(t, StatusCreated, first.Status)

	second, err := svc.EnsureCustomerExists(context.Background(), st, CustomerInput{})
	require.NoError(t, err)
	assert.Equal(t, StatusFound, second.Status)
	assert.Equal(t, SourceState, second.Source)
	assert.Equal(t, first.CustomerID, second.CustomerID)
	assert.Equal(t, "Alice Walker", second.CustomerName)
	assert.Equal(t, 1, fake.listCustomersCalls)
}

func TestEnsureCustomerMatchesExistingByEmail(t *testing.T) {
	fake := &fakeAPI{
		customers: []petpro.Customer{{
			ID:        "cust-7",
			FirstName: "Alice",
			LastName:  "Walker",
			Email:     "alice@example.com",
			Pets:      []petpro.Pet{{ID: "pet-1", Name: "Bella", Species: "Dog"}},
		}},
	}
	svc := newService(testConfig(), fake)
	st := testState(t)

	result, err := svc.EnsureCustomerExists(context.Background(), st, CustomerInput{
		Name:  "A. Walker",
		Email: "ALICE@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFound, result.Status)
	assert.Equal(t, "cust-7", result.CustomerID)
	assert.Len(t, result.ExistingPets, 1)
	assert.Zero(t, fake.createCustomers)
}

func TestEnsurePetsRequiresResolvedCustomer(t *testing.T) {
	fake := &fakeAPI{}
	svc := newService(testConfig(), fake)
	st := testState(t)

	result, err := svc.EnsurePetsExist(context.Background(), st, []PetInput{{Name: "Bella"}})
	require.NoError(t, err)
	assert.Equal(t, StatusInsufficientData, result.Status)
	assert.Zero(t, fake.updatePetsCalls)
}

func TestEnsurePetsBatchesCreatesIntoOneCall(t *testing.T) {
	fake := &fakeAPI{}
	svc := newService(testConfig(), fake)
	st := testState(t)

	_, err := svc.EnsureCustomerExists(context.Background(), st, CustomerInput{Name: "Alice Walker"})
	require.NoError(t, err)

	result, err := svc.EnsurePetsExist(context.Background(), st, []PetInput{
		{Name: "Bella", Species: "Dog", Breed: "Labrador"},
		{Name: "Milo", Species: "Cat", Breed: "Tabby"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, result.Status)
	assert.Len(t, result.PetIDs, 2)
	assert.Equal(t, 1, fake.updatePetsCalls, "all pets go out in one upsert")
}

func TestEnsurePetsMatchedWithoutChangesMakesNoCall(t *testing.T) {
	fake := &fakeAPI{
		customers: []petpro.Customer{{
			ID:        "cust-7",
			FirstName: "Alice",
			Email:     "alice@example.com",
			Pets: []petpro.Pet{
				{ID: "pet-1", Name: "Bella", Species: "Dog", Breed: "Labrador"},
			},
		}},
	}
	svc := newService(testConfig(), fake)
	st := testState(t)

	_, err := svc.EnsureCustomerExists(context.Background(), st, CustomerInput{Email: "alice@example.com"})
	require.NoError(t, err)

	result, err := svc.EnsurePetsExist(context.Background(), st, []PetInput{
		{Name: "Bella", Species: "Dog", Breed: "Labrador"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusFound, result.Status)
	assert.Equal(t, []string{"pet-1"}, result.PetIDs)
	assert.Zero(t, fake.updatePetsCalls)
}

func TestEnsurePetsEmptyTurnReusesResolvedPets(t *testing.T) {
	fake := &fakeAPI{}
	svc := newService(testConfig(), fake)
	st := testState(t)

	_, err := svc.EnsureCustomerExists(context.Background(), st, CustomerInput{Name: "Alice Walker"})
	require.NoError(t, err)

	first, err := svc.EnsurePetsExist(context.Background(), st, []PetInput{
		{Name: "Bella", Species: "Dog", Breed: "Labrador"},
	})
	require.NoError(t, err)
	require.Equal(t, StatusCreated, first.Status)

	second, err := svc.EnsurePetsExist(context.Background(), st, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusFound, second.Status)
	assert.Equal(t, SourceState, second.Source)
	assert.Equal(t, first.PetIDs, second.PetIDs)
	assert.Equal(t, 1, fake.updatePetsCalls)
}

func TestEnsurePetsBreedConflictTriggersUpdate(t *testing.T) {
	fake := &fakeAPI{
		customers: []petpro.Customer{{
			ID:    "cust-7",
			Email: "alice@example.com",
			Pets: []petpro.Pet{
				{ID: "pet-1", Name: "Bella", Species: "Dog", Breed: "Poodle"},
			},
		}},
	}
	svc := newService(testConfig(), fake)
	st := testState(t)

	_, err := svc.EnsureCustomerExists(context.Background(), st, CustomerInput{Email: "alice@example.com"})
	require.NoError(t, err)

	result, err := svc.EnsurePetsExist(context.Background(), st, []PetInput{
		{Name: "Bella", Breed: "Labrador"},
	})
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, result.Status)
	assert.Equal(t, 1, fake.updatePetsCalls)
	assert.Equal(t, "Labrador", fake.customers[0].Pets[0].Breed)
}

func TestEnsureBookingRateMissingMakesZeroRemoteCalls(t *testing.T) {
	fake := &fakeAPI{
		services: []petpro.Service{{
			ID:     "svc-1",
			Name:   "Pet Sitting",
			Active: true,
		}},
	}
	svc := newService(testConfig(), fake)
	st := testState(t)

	ctx := context.Background()

	_, err := svc.EnsureCustomerExists(ctx, st, CustomerInput{Name: "Alice Walker"})
	require.NoError(t, err)

	_, err = svc.EnsurePetsExist(ctx, st, []PetInput{{Name: "Bella", Species: "Dog"}})
	require.NoError(t, err)

	service, err := svc.EnsureServiceMatched(ctx, st, "pet sitting")
	require.NoError(t, err)
	require.Equal(t, StatusRateMissing, service.Status)

	_, err = svc.CalculateDates(st, "tomorrow", nil)
	require.NoError(t, err)

	result, err := svc.EnsureBookingExists(ctx, st, BookingInput{})
	require.NoError(t, err)
	assert.Equal(t, StatusRateMissing, result.Status)
	assert.Zero(t, fake.listBookingsCalls)
	assert.Zero(t, fake.createBookings)
	assert.Zero(t, fake.updateBookings)
}

func TestEnsureServiceRateMissingBlocksBooking(t *testing.T) {
	fake := &fakeAPI{
		services: []petpro.Service{{
			ID:     "svc-1",
			Name:   "Pet Sitting",
			Active: true,
		}},
	}
	svc := newService(testConfig(), fake)
	st := testState(t)

	result, err := svc.EnsureServiceMatched(context.Background(), st, "pet sitting")
	require.NoError(t, err)
	assert.Equal(t, StatusRateMissing, result.Status)

	booking, err := svc.EnsureBookingExists(context.Background(), st, BookingInput{})
	require.NoError(t, err)
	assert.Equal(t, StatusInsufficientData, booking.Status)
	assert.Zero(t, fake.listBookingsCalls, "no remote reads on failed preconditions")
	assert.Zero(t, fake.createBookings)
}

func TestEnsureServiceRepeatedRequestAnsweredFromState(t *testing.T) {
	fake := &fakeAPI{services: []petpro.Service{rateService("Pet Sitting", 50)}}
	svc := newService(testConfig(), fake)
	st := testState(t)

	first, err := svc.EnsureServiceMatched(context.Background(), st, "watch my dog")
	require.NoError(t, err)
	assert.Equal(t, StatusMatched, first.Status)
	assert.Equal(t, 1, fake.listServicesCalls)

	second, err := svc.EnsureServiceMatched(context.Background(), st, "watch my dog")
	require.NoError(t, err)
	assert.Equal(t, StatusFound, second.Status)
	assert.Equal(t, SourceState, second.Source)
	assert.Equal(t, first.ServiceID, second.ServiceID)
	assert.Equal(t, 1, fake.listServicesCalls)
}

func TestEnsureServiceNotFoundListsAvailable(t *testing.T) {
	fake := &fakeAPI{services: []petpro.Service{rateService("Pet Sitting", 50)}}
	svc := newService(testConfig(), fake)
	st := testState(t)

	result, err := svc.EnsureServiceMatched(context.Background(), st, "helicopter tour")
	require.NoError(t, err)
	assert.Equal(t, StatusNotFound, result.Status)
	assert.Equal(t, []string{"Pet Sitting"}, result.AvailableServices)
}

func seedBookableSession(t *testing.T, svc *Service, st *session.State) {
	t.Helper()

	ctx := context.Background()

	customer, err := svc.EnsureCustomerExists(ctx, st, CustomerInput{
		Name:  "Alice Walker",
		Email: "alice@example.com",
	})
	require.NoError(t, err)
	require.True(t, isSuccess(customer.Status))

	pets, err := svc.EnsurePetsExist(ctx, st, []PetInput{
		{Name: "Bella", Species: "Dog", Breed: "Labrador"},
	})
	require.NoError(t, err)
	require.True(t, isSuccess(pets.Status))

	service, err := svc.EnsureServiceMatched(ctx, st, "pet sitting")
	require.NoError(t, err)
	require.Equal(t, StatusMatched, service.Status)

	_, err = svc.CalculateDates(st, "next weekend, 8AM Saturday to 6PM Sunday", nil)
	require.NoError(t, err)
}

func TestEnsureBookingCreatesWhenNoConflict(t *testing.T) {
	fake := &fakeAPI{services: []petpro.Service{rateService("Pet Sitting", 50)}}
	svc := newService(testConfig(), fake)
	st := testState(t)
	seedBookableSession(t, svc, st)

	result, err := svc.EnsureBookingExists(context.Background(), st, BookingInput{})
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, result.Status)
	assert.Equal(t, "created", result.ActionTaken)
	assert.Equal(t, "2024-11-30", result.StartDate)
	assert.Equal(t, "2024-12-01", result.EndDate)
	assert.Equal(t, "08:00", result.StartTime)
	assert.Equal(t, "18:00", result.EndTime)
	assert.Equal(t, 1, fake.createBookings)

	created := fake.bookings[0]
	assert.Equal(t, petpro.BookingScheduled, created.Status)
	assert.Len(t, created.BookingPets, 1)
}

func TestEnsureBookingUpdatesOverlappingSamePetSet(t *testing.T) {
	fake := &fakeAPI{services: []petpro.Service{rateService("Pet Sitting", 50)}}
	svc := newService(testConfig(), fake)
	st := testState(t)
	seedBookableSession(t, svc, st)

	customer, _ := session.Extracted[session.CustomerSummary](st, session.StageCustomerProfile)
	pets, _ := session.Extracted[session.PetSummary](st, session.StagePetResult)

	fake.bookings = []petpro.Booking{{
		ID:             "bk-existing",
		ClientID:       customer.CustomerID,
		ServiceID:      "svc-Pet Sitting",
		ServiceRateID:  "rate-Pet Sitting",
		ProfessionalID: "pro-1",
		StartDate:      "2024-11-30",
		EndDate:        "2024-11-30",
		StartTime:      "09:00",
		EndTime:        "17:00",
		Status:         petpro.BookingScheduled,
		BookingPets:    []petpro.BookingPet{{PetID: pets.PetIDs[0]}},
	}}

	result, err := svc.EnsureBookingExists(context.Background(), st, BookingInput{})
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, result.Status)
	assert.True(t, result.ExistingBookingFound)
	assert.Equal(t, "bk-existing", result.BookingID)
	assert.Equal(t, 1, fake.updateBookings)
	assert.Zero(t, fake.createBookings)
	assert.Equal(t, "2024-12-01", fake.bookings[0].EndDate)
}

func TestEnsureBookingNoChangesMakesNoWrite(t *testing.T) {
	fake := &fakeAPI{services: []petpro.Service{rateService("Pet Sitting", 50)}}
	svc := newService(testConfig(), fake)
	st := testState(t)
	seedBookableSession(t, svc, st)

	customer, _ := session.Extracted[session.CustomerSummary](st, session.StageCustomerProfile)
	pets, _ := session.Extracted[session.PetSummary](st, session.StagePetResult)

	fake.bookings = []petpro.Booking{{
		ID:            "bk-existing",
		ClientID:      customer.CustomerID,
		ServiceID:     "svc-Pet Sitting",
		ServiceRateID: "rate-Pet Sitting",
		StartDate:     "2024-11-30T00:00:00Z",
		EndDate:       "2024-12-01T00:00:00Z",
		StartTime:     "08:00:00",
		EndTime:       "18:00:00",
		Status:        petpro.BookingScheduled,
		BookingPets:   []petpro.BookingPet{{PetID: pets.PetIDs[0]}},
	}}

	result, err := svc.EnsureBookingExists(context.Background(), st, BookingInput{})
	require.NoError(t, err)
	assert.Equal(t, StatusNoChanges, result.Status)
	assert.Equal(t, "no_changes", result.ActionTaken)
	assert.Zero(t, fake.updateBookings)
	assert.Zero(t, fake.createBookings)
}

func TestEnsureBookingNotesOnlyAmendmentTriggersUpdate(t *testing.T) {
	fake := &fakeAPI{services: []petpro.Service{rateService("Pet Sitting", 50)}}
	svc := newService(testConfig(), fake)
	st := testState(t)
	seedBookableSession(t, svc, st)

	customer, _ := session.Extracted[session.CustomerSummary](st, session.StageCustomerProfile)
	pets, _ := session.Extracted[session.PetSummary](st, session.StagePetResult)

	fake.bookings = []petpro.Booking{{
		ID:            "bk-existing",
		ClientID:      customer.CustomerID,
		ServiceID:     "svc-Pet Sitting",
		ServiceRateID: "rate-Pet Sitting",
		StartDate:     "2024-11-30",
		EndDate:       "2024-12-01",
		StartTime:     "08:00",
		EndTime:       "18:00",
		Notes:         "use the side door",
		Status:        petpro.BookingScheduled,
		BookingPets:   []petpro.BookingPet{{PetID: pets.PetIDs[0]}},
	}}

	result, err := svc.EnsureBookingExists(context.Background(), st, BookingInput{
		Notes: "Bella gets medication at 9AM",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusUpdated, result.Status)
	assert.Equal(t, "updated", result.ActionTaken)
	assert.Equal(t, 1, fake.updateBookings)
	assert.Zero(t, fake.createBookings)
	assert.Equal(t, "Bella gets medication at 9AM", fake.bookings[0].Notes)

	// The same notes again are not a change.
	again, err := svc.EnsureBookingExists(context.Background(), st, BookingInput{
		Notes: "Bella gets medication at 9AM",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusNoChanges, again.Status)
	assert.Equal(t, 1, fake.updateBookings)
}

func TestEnsureBookingDisjointPetSetCreatesNew(t *testing.T) {
	fake := &fakeAPI{services: []petpro.Service{rateService("Pet Sitting", 50)}}
	svc := newService(testConfig(), fake)
	st := testState(t)
	seedBookableSession(t, svc, st)

	customer, _ := session.Extracted[session.CustomerSummary](st, session.StageCustomerProfile)

	fake.bookings = []petpro.Booking{{
		ID:          "bk-other",
		ClientID:    customer.CustomerID,
		ServiceID:   "svc-Pet Sitting",
		StartDate:   "2024-11-30",
		EndDate:     "2024-12-01",
		Status:      petpro.BookingScheduled,
		BookingPets: []petpro.BookingPet{{PetID: "pet-of-someone-else"}},
	}}

	result, err := svc.EnsureBookingExists(context.Background(), st, BookingInput{})
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, result.Status)
	assert.False(t, result.ExistingBookingFound)
	assert.Equal(t, 1, fake.createBookings)
	assert.Zero(t, fake.updateBookings)
}

func TestEnsureBookingNonOverlappingWindowCreatesNew(t *testing.T) {
	fake := &fakeAPI{services: []petpro.Service{rateService("Pet Sitting", 50)}}
	svc := newService(testConfig(), fake)
	st := testState(t)
	seedBookableSession(t, svc, st)

	customer, _ := session.Extracted[session.CustomerSummary](st, session.StageCustomerProfile)
	pets, _ := session.Extracted[session.PetSummary](st, session.StagePetResult)

	fake.bookings = []petpro.Booking{{
		ID:          "bk-past",
		ClientID:    customer.CustomerID,
		ServiceID:   "svc-Pet Sitting",
		StartDate:   "2024-11-20",
		EndDate:     "2024-11-21",
		Status:      petpro.BookingScheduled,
		BookingPets: []petpro.BookingPet{{PetID: pets.PetIDs[0]}},
	}}

	result, err := svc.EnsureBookingExists(context.Background(), st, BookingInput{})
	require.NoError(t, err)
	assert.Equal(t, StatusCreated, result.Status)
	assert.Equal(t, 1, fake.createBookings)
}

func TestRunPipelineEndToEnd(t *testing.T) {
	fake := &fakeAPI{services: []petpro.Service{
		rateService("Pet Sitting", 50),
		rateService("Dog Walking", 25),
	}}
	svc := newService(testConfig(), fake)
	st := testState(t)

	turn := TurnInput{
		CustomerName: "Alice Walker",
		Pets: []PetInput{
			{Name: "Bella", Species: "Dog", Breed: "Golden Retriever", Age: 3},
			{Name: "Max", Species: "Cat", Age: 1},
		},
		ServiceRequest: "someone to watch my dog",
		DatePhrase:     "next weekend, 8AM Saturday to 6PM Sunday",
	}

	result, err := svc.RunPipeline(context.Background(), st, turn)
	require.NoError(t, err)

	assert.Empty(t, result.Halted)
	assert.Equal(t, StatusCreated, result.Status)
	require.NotNil(t, result.Pets)
	assert.Len(t, result.Pets.PetIDs, 2)
	require.NotNil(t, result.Booking)
	assert.Equal(t, "Pet Sitting", result.Booking.ServiceName)
	assert.Equal(t, "2024-11-30", result.Booking.StartDate)
	assert.Equal(t, "2024-12-01", result.Booking.EndDate)
	assert.Len(t, result.Booking.PetIDs, 2)
	assert.NotEmpty(t, result.Booking.BookingID)

	// The same turn replayed neither duplicates records nor writes again.
	replay, err := svc.RunPipeline(context.Background(), st, turn)
	require.NoError(t, err)
	assert.Equal(t, StatusNoChanges, replay.Status)
	assert.Equal(t, 1, fake.createCustomers)
	assert.Equal(t, 1, fake.updatePetsCalls)
	assert.Equal(t, 1, fake.createBookings)
	assert.Zero(t, fake.updateBookings)
}

func TestRunPipelineAmendmentTurnWithoutCustomerOrPets(t *testing.T) {
	fake := &fakeAPI{services: []petpro.Service{rateService("Pet Sitting", 50)}}
	svc := newService(testConfig(), fake)
	st := testState(t)

	first, err := svc.RunPipeline(context.Background(), st, TurnInput{
		CustomerName:   "Alice Walker",
		Pets:           []PetInput{{Name: "Bella", Species: "Dog", Breed: "Labrador"}},
		ServiceRequest: "pet sitting",
		DatePhrase:     "next weekend, 8AM Saturday to 6PM Sunday",
	})
	require.NoError(t, err)
	require.Equal(t, StatusCreated, first.Status)

	// A later turn carries only a time change and new instructions; the
	// customer and pets come from session state.
	amendment, err := svc.RunPipeline(context.Background(), st, TurnInput{
		ServiceRequest: "pet sitting",
		DatePhrase:     "next weekend, 9AM Saturday to 6PM Sunday",
		Notes:          "Bella gets medication at 9AM",
	})
	require.NoError(t, err)

	assert.Empty(t, amendment.Halted)
	assert.Equal(t, StatusUpdated, amendment.Status)
	require.NotNil(t, amendment.Booking)
	assert.Equal(t, first.Booking.BookingID, amendment.Booking.BookingID)
	assert.Equal(t, 1, fake.createCustomers)
	assert.Equal(t, 1, fake.updatePetsCalls)
	assert.Equal(t, 1, fake.createBookings)
	assert.Equal(t, 1, fake.updateBookings)
	assert.Equal(t, "09:00", fake.bookings[0].StartTime)
	assert.Equal(t, "Bella gets medication at 9AM", fake.bookings[0].Notes)
}

func TestRunPipelineHaltsOnUnknownService(t *testing.T) {
	fake := &fakeAPI{services: []petpro.Service{rateService("Pet Sitting", 50)}}
	svc := newService(testConfig(), fake)
	st := testState(t)

	result, err := svc.RunPipeline(context.Background(), st, TurnInput{
		CustomerName:   "Alice Walker",
		Pets:           []PetInput{{Name: "Bella", Species: "Dog", Breed: "Labrador"}},
		ServiceRequest: "helicopter tour",
		DatePhrase:     "tomorrow",
	})
	require.NoError(t, err)

	assert.Equal(t, StageService, result.Halted)
	assert.Equal(t, StatusNotFound, result.Status)
	assert.Nil(t, result.Booking)
	assert.Zero(t, fake.createBookings)
}
