package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	bookingserrors "spacelink/internal/bookings/errors"
	"spacelink/internal/bookings/events"
	"spacelink/internal/bookings/validator"
	propertieserrors "spacelink/internal/properties/errors"
	userserrors "spacelink/internal/users/errors"
	"spacelink/pkg/config"
	mongotx "spacelink/pkg/db/mongo"
	apperrors "spacelink/pkg/errors"
	"spacelink/pkg/logger"
	"spacelink/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

// memoryBookingRepository keeps bookings in a map and applies the stored
// status filter the way the Mongo repository does.
type memoryBookingRepository struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	nextID   int
	updates  []statusUpdate
	failFind error
}

type statusUpdate struct {
	id     string
	status model.BookingStatus
}

func newMemoryBookingRepository(bookings ...*model.Booking) *memoryBookingRepository {
	repo := &memoryBookingRepository{bookings: map[string]*model.Booking{}}
	for _, b := range bookings {
		copied := *b
		repo.bookings[b.ID] = &copied
	}
	return repo
}

func (r *memoryBookingRepository) Create(_ context.Context, b *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	b.ID = fmt.Sprintf("booking-new-%d", r.nextID)
	copied := *b
	r.bookings[b.ID] = &copied
	return nil
}

func (r *memoryBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memoryBookingRepository) FindByUser(_ context.Context, userID string) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range r.bookings {
		if b.UserID == userID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryBookingRepository) FindByProperty(_ context.Context, propertyID string, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*model.Booking{}
	for _, b := range r.bookings {
		if b.PropertyID == propertyID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryBookingRepository) CountByProperty(ctx context.Context, propertyID string) (int64, error) {
	bookings, _ := r.FindByProperty(ctx, propertyID, 0, 0)
	return int64(len(bookings)), nil
}

func (r *memoryBookingRepository) FindActiveInRange(_ context.Context, propertyID string, from, to time.Time, excludeID string) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failFind != nil {
		return nil, r.failFind
	}
	out := []*model.Booking{}
	for _, b := range r.bookings {
		if b.PropertyID == propertyID && b.Status == model.BookingStatusActive && b.ID != excludeID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryBookingRepository) UpdateStatus(_ context.Context, id string, status model.BookingStatus, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if b.Status != model.BookingStatusActive {
		return bookingserrors.ErrNotActive
	}
	b.Status = status
	b.UpdatedAt = at
	r.updates = append(r.updates, statusUpdate{id: id, status: status})
	return nil
}

func (r *memoryBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(mongo.NewSessionContext(ctx, nil))
}

func (r *memoryBookingRepository) stored(id string) *model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[id]
}

type mockLocker struct {
	held     bool
	err      error
	acquired int
	released int
}

func (l *mockLocker) AcquireLock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	if l.err != nil {
		return "", false, l.err
	}
	if l.held {
		return "", false, nil
	}
	l.acquired++
	return "token", true, nil
}

func (l *mockLocker) ReleaseLock(_ context.Context, key, token string) error {
	l.released++
	return nil
}

type mockPropertyReader struct {
	properties map[string]*model.Property
	err        error
}

func (m *mockPropertyReader) FindByID(_ context.Context, id string) (*model.Property, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.properties[id]
	if !ok {
		return nil, propertieserrors.ErrNotFound
	}
	return p, nil
}

func (m *mockPropertyReader) FindByIDs(_ context.Context, ids []string) (map[string]*model.Property, error) {
	out := map[string]*model.Property{}
	for _, id := range ids {
		if p, ok := m.properties[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

type mockUserReader struct {
	users map[string]*model.User
}

func (m *mockUserReader) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	return u, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

var jan1 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type fixture struct {
	svc        *bookingService
	repo       *memoryBookingRepository
	locker     *mockLocker
	properties *mockPropertyReader
	users      *mockUserReader
	publisher  *recordingPublisher
}

func newFixture(now time.Time, bookings ...*model.Booking) *fixture {
	f := &fixture{
		repo:   newMemoryBookingRepository(bookings...),
		locker: &mockLocker{},
		properties: &mockPropertyReader{properties: map[string]*model.Property{
			"parking-1": {
				ID:       "parking-1",
				OwnerID:  "owner-1",
				Title:    "Covered parking",
				Category: model.CategoryParking,
				RentType: []model.RentType{model.RentTypeMonthly},
				Price:    500,
				Address:  "12 Main Street",
			},
			"hall-1": {
				ID:       "hall-1",
				OwnerID:  "owner-1",
				Title:    "Event hall",
				Category: model.CategoryEvent,
				RentType: []model.RentType{model.RentTypeHourly},
				Price:    40,
				Address:  "1 Hall Road",
			},
			"disabled-1": {
				ID:         "disabled-1",
				OwnerID:    "owner-1",
				Category:   model.CategoryParking,
				RentType:   []model.RentType{model.RentTypeMonthly},
				Price:      100,
				IsDisabled: true,
			},
		}},
		users: &mockUserReader{users: map[string]*model.User{
			"user-1": {ID: "user-1", Email: "a@example.com", Name: "Alice", Phone: "+15551234567", Address: "5 Elm Street"},
			"user-2": {ID: "user-2", Email: "b@example.com", Name: "Bob"},
		}},
		publisher: &recordingPublisher{},
	}

	cfg := &config.Config{
		Log:                logger.Discard(),
		BookingLockTTL:     10 * time.Second,
		CancellationWindow: 24 * time.Hour,
	}
	svc := NewBookingService(f.repo, f.locker, f.properties, f.users, validator.NewBookingValidator(), f.publisher, cfg).(*bookingService)
	svc.now = func() time.Time { return now }
	f.svc = svc
	return f
}

func activeBooking(id, userID, propertyID string, from, to time.Time) *model.Booking {
	return &model.Booking{
		ID:          id,
		UserID:      userID,
		PropertyID:  propertyID,
		FromDate:    from,
		ToDate:      to,
		BookingType: model.RentTypeMonthly,
		Status:      model.BookingStatusActive,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, code), "expected %s, got %v", code, err)
}

// ────────────────────────────────────────────────
// Create
// ────────────────────────────────────────────────

func TestCreate_ParkingMonthlyPricedAndPersisted(t *testing.T) {
	f := newFixture(jan1.Add(-48 * time.Hour))

	details, err := f.svc.Create(context.Background(), "user-1", &model.BookingRequest{
		PropertyID:  "parking-1",
		FromDate:    "2025-01-01",
		ToDate:      "2025-02-01",
		BookingType: "monthly",
		Notes:       "North entrance",
	})

	require.NoError(t, err)
	assert.Equal(t, 1000.0, details.TotalPrice)
	assert.Equal(t, model.BookingStatusActive, details.Status)
	assert.Equal(t, "user-1", details.UserID)
	assert.Equal(t, "Covered parking", details.Property.Title)
	assert.Equal(t, "Alice", details.User.Name)

	stored := f.repo.stored(details.ID)
	require.NotNil(t, stored)
	assert.Equal(t, 1000.0, stored.TotalPrice)
	assert.Equal(t, 1, f.locker.acquired)
	assert.Equal(t, 1, f.locker.released)
	assert.Equal(t, []string{events.TypeBookingCreated}, f.publisher.types())
}

func TestCreate_ValidationComesFirst(t *testing.T) {
	f := newFixture(jan1)

	_, err := f.svc.Create(context.Background(), "user-2", &model.BookingRequest{PropertyID: "parking-1"})

	assertCode(t, err, apperrors.CodeValidation)
	details := apperrors.AsAppError(err).Details
	assert.Contains(t, details, "fromDate")
	assert.Contains(t, details, "bookingType")
}

func TestCreate_ProfileIncomplete(t *testing.T) {
	f := newFixture(jan1)

	_, err := f.svc.Create(context.Background(), "user-2", &model.BookingRequest{
		PropertyID:  "missing-property",
		FromDate:    "2025-03-01",
		ToDate:      "2025-04-01",
		BookingType: "monthly",
	})

	assertCode(t, err, apperrors.CodeProfileIncomplete)
	assert.Equal(t, []string{"phone", "address"}, apperrors.AsAppError(err).Details["missing_fields"])
	assert.Zero(t, f.locker.acquired)
}

func TestCreate_UnknownUserIsUnauthorized(t *testing.T) {
	f := newFixture(jan1)

	_, err := f.svc.Create(context.Background(), "ghost", &model.BookingRequest{
		PropertyID:  "parking-1",
		FromDate:    "2025-03-01",
		ToDate:      "2025-04-01",
		BookingType: "monthly",
	})

	assertCode(t, err, apperrors.CodeUnauthorized)
}

func TestCreate_PropertyNotFoundOrDisabled(t *testing.T) {
	for _, propertyID := range []string{"missing-property", "disabled-1"} {
		t.Run(propertyID, func(t *testing.T) {
			f := newFixture(jan1)

			_, err := f.svc.Create(context.Background(), "user-1", &model.BookingRequest{
				PropertyID:  propertyID,
				FromDate:    "2025-03-01",
				ToDate:      "2025-04-01",
				BookingType: "monthly",
			})

			assertCode(t, err, apperrors.CodeNotFound)
			assert.Equal(t, 404, apperrors.AsAppError(err).StatusCode())
		})
	}
}

func TestCreate_BookingTypeNotOffered(t *testing.T) {
	f := newFixture(jan1)

	_, err := f.svc.Create(context.Background(), "user-1", &model.BookingRequest{
		PropertyID:  "parking-1",
		FromDate:    "2025-03-01",
		ToDate:      "2025-03-02",
		BookingType: "hourly",
	})

	assertCode(t, err, apperrors.CodeValidation)
	assert.Zero(t, f.locker.acquired)
}

func TestCreate_ConflictWithAdjacentBooking(t *testing.T) {
	existing := activeBooking("b-1", "user-9", "parking-1", jan1, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	f := newFixture(jan1.Add(-72*time.Hour), existing)

	_, err := f.svc.Create(context.Background(), "user-1", &model.BookingRequest{
		PropertyID:  "parking-1",
		FromDate:    "2025-02-01",
		ToDate:      "2025-03-01",
		BookingType: "monthly",
	})

	assertCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, 400, apperrors.AsAppError(err).StatusCode())
	assert.Equal(t, 1, f.locker.released, "lock must be released on conflict")
	assert.Empty(t, f.publisher.types())
}

func TestCreate_CancelledBookingDoesNotBlock(t *testing.T) {
	cancelled := activeBooking("b-1", "user-9", "parking-1", jan1, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
	cancelled.Status = model.BookingStatusCancelled
	f := newFixture(jan1.Add(-72*time.Hour), cancelled)

	_, err := f.svc.Create(context.Background(), "user-1", &model.BookingRequest{
		PropertyID:  "parking-1",
		FromDate:    "2025-01-10",
		ToDate:      "2025-01-20",
		BookingType: "monthly",
	})

	require.NoError(t, err)
}

func TestCreate_LockHeldIsConflict(t *testing.T) {
	f := newFixture(jan1)
	f.locker.held = true

	_, err := f.svc.Create(context.Background(), "user-1", &model.BookingRequest{
		PropertyID:  "parking-1",
		FromDate:    "2025-03-01",
		ToDate:      "2025-04-01",
		BookingType: "monthly",
	})

	assertCode(t, err, apperrors.CodeConflict)
	assert.Zero(t, f.locker.released)
}

func TestCreate_StorageErrorIsInternal(t *testing.T) {
	f := newFixture(jan1)
	f.repo.failFind = errors.New("connection reset")

	_, err := f.svc.Create(context.Background(), "user-1", &model.BookingRequest{
		PropertyID:  "parking-1",
		FromDate:    "2025-03-01",
		ToDate:      "2025-04-01",
		BookingType: "monthly",
	})

	assertCode(t, err, apperrors.CodeInternal)
	assert.NotContains(t, apperrors.AsAppError(err).Message, "connection reset")
}

func TestCreate_PublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(jan1)
	f.publisher.err = errors.New("broker down")

	_, err := f.svc.Create(context.Background(), "user-1", &model.BookingRequest{
		PropertyID:  "hall-1",
		FromDate:    "2025-03-01T10:00:00Z",
		ToDate:      "2025-03-01T13:30:00Z",
		BookingType: "hourly",
	})

	require.NoError(t, err)
}

// ────────────────────────────────────────────────
// Availability and price preview
// ────────────────────────────────────────────────

func TestCheckAvailability(t *testing.T) {
	existing := activeBooking("b-1", "user-9", "parking-1", jan1, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))
	f := newFixture(jan1, existing)

	resp, err := f.svc.CheckAvailability(context.Background(), &model.AvailabilityRequest{
		PropertyID: "parking-1", FromDate: "2025-01-31", ToDate: "2025-02-10",
	})
	require.NoError(t, err)
	assert.False(t, resp.Available)
	assert.Equal(t, msgUnavailable, resp.Message)

	resp, err = f.svc.CheckAvailability(context.Background(), &model.AvailabilityRequest{
		PropertyID: "parking-1", FromDate: "2025-02-01", ToDate: "2025-02-10",
	})
	require.NoError(t, err)
	assert.True(t, resp.Available)
	assert.Equal(t, msgAvailable, resp.Message)
}

func TestCheckAvailability_InvalidRange(t *testing.T) {
	f := newFixture(jan1)

	_, err := f.svc.CheckAvailability(context.Background(), &model.AvailabilityRequest{
		PropertyID: "parking-1", FromDate: "2025-02-10", ToDate: "2025-02-01",
	})

	assertCode(t, err, apperrors.CodeValidation)
}

func TestPricePreview(t *testing.T) {
	f := newFixture(jan1)

	resp, err := f.svc.PricePreview(context.Background(), &model.PricePreviewRequest{
		PropertyID:  "hall-1",
		FromDate:    "2025-03-01T10:00:00Z",
		ToDate:      "2025-03-01T13:30:00Z",
		BookingType: "hourly",
	})

	require.NoError(t, err)
	assert.Equal(t, 40.0, resp.BasePrice)
	assert.Equal(t, 160.0, resp.TotalPrice)
}

func TestPricePreview_DisabledPropertyNotFound(t *testing.T) {
	f := newFixture(jan1)

	_, err := f.svc.PricePreview(context.Background(), &model.PricePreviewRequest{
		PropertyID: "disabled-1", FromDate: "2025-03-01", ToDate: "2025-04-01", BookingType: "monthly",
	})

	assertCode(t, err, apperrors.CodeNotFound)
}

// ────────────────────────────────────────────────
// Listing and lazy expiry
// ────────────────────────────────────────────────

func TestMyBookings_ExpiresOverdueAndPersists(t *testing.T) {
	overdue := activeBooking("b-1", "user-1", "parking-1", jan1, jan1.Add(48*time.Hour))
	upcoming := activeBooking("b-2", "user-1", "parking-1", jan1.Add(30*24*time.Hour), jan1.Add(60*24*time.Hour))
	other := activeBooking("b-3", "user-9", "parking-1", jan1, jan1.Add(24*time.Hour))
	f := newFixture(jan1.Add(10*24*time.Hour), overdue, upcoming, other)

	details, err := f.svc.MyBookings(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, details, 2)
	statuses := map[string]model.BookingStatus{}
	for _, d := range details {
		statuses[d.ID] = d.Status
		assert.Equal(t, "Covered parking", d.Property.Title)
	}
	assert.Equal(t, model.BookingStatusExpired, statuses["b-1"])
	assert.Equal(t, model.BookingStatusActive, statuses["b-2"])

	assert.Equal(t, model.BookingStatusExpired, f.repo.stored("b-1").Status)
	assert.Equal(t, []statusUpdate{{id: "b-1", status: model.BookingStatusExpired}}, f.repo.updates)
	assert.Equal(t, []string{events.TypeBookingExpired}, f.publisher.types())

	// A second read finds the stored status and writes nothing.
	_, err = f.svc.MyBookings(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Len(t, f.repo.updates, 1)
}

func TestGetByID_OwnerOnly(t *testing.T) {
	b := activeBooking("b-1", "user-1", "parking-1", jan1.Add(72*time.Hour), jan1.Add(96*time.Hour))
	f := newFixture(jan1, b)

	details, err := f.svc.GetByID(context.Background(), "user-1", "b-1")
	require.NoError(t, err)
	assert.Equal(t, "parking-1", details.Property.ID)

	_, err = f.svc.GetByID(context.Background(), "user-2", "b-1")
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = f.svc.GetByID(context.Background(), "user-1", "nope")
	assertCode(t, err, apperrors.CodeNotFound)
}

func TestByProperty(t *testing.T) {
	f := newFixture(jan1,
		activeBooking("b-1", "user-1", "parking-1", jan1.Add(24*time.Hour), jan1.Add(48*time.Hour)),
		activeBooking("b-2", "user-2", "parking-1", jan1.Add(72*time.Hour), jan1.Add(96*time.Hour)),
		activeBooking("b-3", "user-2", "hall-1", jan1.Add(72*time.Hour), jan1.Add(96*time.Hour)),
	)

	bookings, total, err := f.svc.ByProperty(context.Background(), "owner-1", "parking-1", 10, 0)
	require.NoError(t, err)
	assert.Len(t, bookings, 2)
	assert.Equal(t, int64(2), total)

	_, _, err = f.svc.ByProperty(context.Background(), "user-1", "parking-1", 10, 0)
	assertCode(t, err, apperrors.CodeForbidden)

	_, _, err = f.svc.ByProperty(context.Background(), "owner-1", "missing", 10, 0)
	assertCode(t, err, apperrors.CodeNotFound)
}

// ────────────────────────────────────────────────
// Cancel
// ────────────────────────────────────────────────

func TestCancel_Window(t *testing.T) {
	from := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		before  time.Duration
		wantErr bool
	}{
		{"30 hours before start", 30 * time.Hour, false},
		{"exactly 24 hours before start", 24 * time.Hour, false},
		{"10 hours before start", 10 * time.Hour, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := activeBooking("b-1", "user-1", "parking-1", from, from.Add(30*24*time.Hour))
			f := newFixture(from.Add(-tt.before), b)

			cancelled, err := f.svc.Cancel(context.Background(), "user-1", "b-1")

			if tt.wantErr {
				assertCode(t, err, apperrors.CodeConflict)
				assert.Contains(t, apperrors.AsAppError(err).Message, "24 hours")
				assert.Equal(t, model.BookingStatusActive, f.repo.stored("b-1").Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
			assert.Equal(t, model.BookingStatusCancelled, f.repo.stored("b-1").Status)
			assert.Equal(t, []string{events.TypeBookingCancelled}, f.publisher.types())
		})
	}
}

func TestCancel_NotOwner(t *testing.T) {
	b := activeBooking("b-1", "user-1", "parking-1", jan1.Add(72*time.Hour), jan1.Add(96*time.Hour))
	f := newFixture(jan1, b)

	_, err := f.svc.Cancel(context.Background(), "user-2", "b-1")

	assertCode(t, err, apperrors.CodeForbidden)
}

func TestCancel_TerminalStatesRejected(t *testing.T) {
	for _, status := range []model.BookingStatus{model.BookingStatusCancelled, model.BookingStatusExpired} {
		t.Run(string(status), func(t *testing.T) {
			b := activeBooking("b-1", "user-1", "parking-1", jan1.Add(72*time.Hour), jan1.Add(96*time.Hour))
			b.Status = status
			f := newFixture(jan1, b)

			_, err := f.svc.Cancel(context.Background(), "user-1", "b-1")

			assertCode(t, err, apperrors.CodeConflict)
			assert.Equal(t, status, f.repo.stored("b-1").Status)
		})
	}
}

func TestCancel_OverdueBookingIsExpiredNotCancelled(t *testing.T) {
	b := activeBooking("b-1", "user-1", "parking-1", jan1, jan1.Add(24*time.Hour))
	f := newFixture(jan1.Add(72*time.Hour), b)

	_, err := f.svc.Cancel(context.Background(), "user-1", "b-1")

	assertCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, model.BookingStatusExpired, f.repo.stored("b-1").Status)
	assert.Equal(t, []string{events.TypeBookingExpired}, f.publisher.types())
}

func TestFormatWindow(t *testing.T) {
	assert.Equal(t, "24 hours", formatWindow(24*time.Hour))
	assert.Equal(t, "1h30m0s", formatWindow(90*time.Minute))
}
