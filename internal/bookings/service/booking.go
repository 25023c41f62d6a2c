package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"spacelink/internal/bookings/availability"
	bookingserrors "spacelink/internal/bookings/errors"
	"spacelink/internal/bookings/events"
	"spacelink/internal/bookings/repository"
	"spacelink/internal/bookings/validator"
	propertieserrors "spacelink/internal/properties/errors"
	userserrors "spacelink/internal/users/errors"
	"spacelink/pkg/config"
	apperrors "spacelink/pkg/errors"
	"spacelink/pkg/model"
	"spacelink/pkg/pricing"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	msgAvailable   = "Property is available for the selected dates"
	msgUnavailable = "Property is not available for the selected dates"
)

type BookingService interface {
	Create(ctx context.Context, userID string, req *model.BookingRequest) (*model.BookingDetails, error)
	CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (*model.AvailabilityResponse, error)
	PricePreview(ctx context.Context, req *model.PricePreviewRequest) (*model.PricePreviewResponse, error)
	MyBookings(ctx context.Context, userID string) ([]*model.BookingDetails, error)
	GetByID(ctx context.Context, userID, id string) (*model.BookingDetails, error)
	Cancel(ctx context.Context, userID, id string) (*model.Booking, error)
	ByProperty(ctx context.Context, ownerID, propertyID string, limit int, offset int64) ([]*model.Booking, int64, error)
}

// PropertyReader is the slice of the properties store bookings depend on.
// It is read directly rather than through the cache so a freshly disabled
// property can never be booked.
type PropertyReader interface {
	FindByID(ctx context.Context, id string) (*model.Property, error)
	FindByIDs(ctx context.Context, ids []string) (map[string]*model.Property, error)
}

type UserReader interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type bookingService struct {
	repo       repository.BookingRepository
	locker     repository.Locker
	detector   *availability.Detector
	properties PropertyReader
	users      UserReader
	validator  *validator.BookingValidator
	publisher  events.Publisher
	cfg        *config.Config
	now        func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	locker repository.Locker,
	properties PropertyReader,
	users UserReader,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	cfg *config.Config,
) BookingService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &bookingService{
		repo:       repo,
		locker:     locker,
		detector:   availability.NewDetector(repo),
		properties: properties,
		users:      users,
		validator:  validator,
		publisher:  publisher,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Create runs the booking checks in a fixed order: request fields, profile
// completeness, property existence, booking type, availability and finally
// price. The availability check and the insert happen under a per-property
// lock so two overlapping requests cannot both succeed.
func (s *bookingService) Create(ctx context.Context, userID string, req *model.BookingRequest) (*model.BookingDetails, error) {
	input, err := s.validator.ValidateCreate(req)
	if err != nil {
		s.cfg.Log.Warn("Booking validation failed", "user_id", userID, "error", err)
		return nil, validationError("Invalid booking request", err)
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if missing := user.MissingProfileFields(); len(missing) > 0 {
		s.cfg.Log.Info("Booking rejected, profile incomplete", "user_id", userID, "missing", missing)
		return nil, apperrors.ProfileIncomplete(missing)
	}

	property, err := s.loadBookableProperty(ctx, input.PropertyID)
	if err != nil {
		return nil, err
	}
	if !property.Supports(input.BookingType) {
		return nil, apperrors.Validation(
			fmt.Sprintf("This property does not offer %s bookings", input.BookingType),
			map[string]any{"bookingType": input.BookingType, "supported": property.RentType},
		)
	}

	release, err := s.acquirePropertyLock(ctx, property.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.now().UTC()
	booking := &model.Booking{
		UserID:      userID,
		PropertyID:  property.ID,
		FromDate:    input.Range.From,
		ToDate:      input.Range.To,
		BookingType: input.BookingType,
		Status:      model.BookingStatusActive,
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		conflict, err := s.detector.HasConflict(sessCtx, property.ID, booking.FromDate, booking.ToDate, "")
		if err != nil {
			return apperrors.Internal("Failed to check availability", err)
		}
		if conflict {
			return apperrors.Conflict(msgUnavailable).WithDetails(map[string]any{
				"propertyId": property.ID,
				"fromDate":   booking.FromDate,
				"toDate":     booking.ToDate,
			})
		}

		booking.TotalPrice = pricing.ComputePrice(property.Price, booking.BookingType, booking.FromDate, booking.ToDate)

		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Warn("Booking creation failed",
			"user_id", userID,
			"property_id", property.ID,
			"error", err,
		)
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"user_id", userID,
		"property_id", property.ID,
		"booking_type", booking.BookingType,
		"total_price", booking.TotalPrice,
	)
	s.publish(ctx, events.TypeBookingCreated, booking)

	return &model.BookingDetails{
		Booking:  booking,
		Property: property.Summary(),
		User:     user.Summary(),
	}, nil
}

func (s *bookingService) CheckAvailability(ctx context.Context, req *model.AvailabilityRequest) (*model.AvailabilityResponse, error) {
	r, err := s.validator.ValidateAvailability(req)
	if err != nil {
		return nil, validationError("Invalid availability request", err)
	}

	conflict, err := s.detector.HasConflict(ctx, req.PropertyID, r.From, r.To, "")
	if err != nil {
		s.cfg.Log.Error("Failed to check availability", "property_id", req.PropertyID, "error", err)
		return nil, apperrors.Internal("Failed to check availability", err)
	}

	if conflict {
		return &model.AvailabilityResponse{Available: false, Message: msgUnavailable}, nil
	}
	return &model.AvailabilityResponse{Available: true, Message: msgAvailable}, nil
}

// PricePreview is advisory. It prices the range with the same calculator
// Create uses but does not require the booking type to be offered.
func (s *bookingService) PricePreview(ctx context.Context, req *model.PricePreviewRequest) (*model.PricePreviewResponse, error) {
	r, err := s.validator.ValidatePricePreview(req)
	if err != nil {
		return nil, validationError("Invalid price preview request", err)
	}

	property, err := s.loadBookableProperty(ctx, req.PropertyID)
	if err != nil {
		return nil, err
	}

	bookingType := model.RentType(req.BookingType)
	return &model.PricePreviewResponse{
		PropertyID:  property.ID,
		BookingType: bookingType,
		BasePrice:   property.Price,
		TotalPrice:  pricing.ComputePrice(property.Price, bookingType, r.From, r.To),
	}, nil
}

func (s *bookingService) MyBookings(ctx context.Context, userID string) ([]*model.BookingDetails, error) {
	bookings, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		s.cfg.Log.Error("Failed to list user bookings", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	if err := s.expireOverdue(ctx, bookings); err != nil {
		return nil, err
	}

	propertyIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		propertyIDs = append(propertyIDs, b.PropertyID)
	}
	properties, err := s.properties.FindByIDs(ctx, propertyIDs)
	if err != nil {
		s.cfg.Log.Error("Failed to load booked properties", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to retrieve bookings", err)
	}

	details := make([]*model.BookingDetails, 0, len(bookings))
	for _, b := range bookings {
		d := &model.BookingDetails{Booking: b}
		if p, ok := properties[b.PropertyID]; ok {
			d.Property = p.Summary()
		}
		details = append(details, d)
	}

	s.cfg.Log.Debug("User bookings listed", "user_id", userID, "count", len(details))
	return details, nil
}

func (s *bookingService) GetByID(ctx context.Context, userID, id string) (*model.BookingDetails, error) {
	booking, err := s.loadOwnBooking(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.expireOverdue(ctx, []*model.Booking{booking}); err != nil {
		return nil, err
	}

	details := &model.BookingDetails{Booking: booking}
	property, err := s.properties.FindByID(ctx, booking.PropertyID)
	switch {
	case err == nil:
		details.Property = property.Summary()
	case errors.Is(err, propertieserrors.ErrNotFound):
	default:
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return details, nil
}

// Cancel applies lazy expiry first, so a booking that has already ended is
// reported as not active rather than cancelled after the fact.
func (s *bookingService) Cancel(ctx context.Context, userID, id string) (*model.Booking, error) {
	booking, err := s.loadOwnBooking(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.expireOverdue(ctx, []*model.Booking{booking}); err != nil {
		return nil, err
	}

	if booking.Status != model.BookingStatusActive {
		return nil, apperrors.Conflict("Only active bookings can be cancelled").
			WithDetails(map[string]any{"status": booking.Status})
	}

	now := s.now().UTC()
	if booking.FromDate.Sub(now) < s.cfg.CancellationWindow {
		return nil, apperrors.Conflict(fmt.Sprintf(
			"Bookings can only be cancelled at least %s before the start date",
			formatWindow(s.cfg.CancellationWindow),
		))
	}

	err = s.repo.UpdateStatus(ctx, booking.ID, model.BookingStatusCancelled, now)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotActive) {
			return nil, apperrors.Conflict("Only active bookings can be cancelled")
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to cancel booking", err)
	}

	booking.Status = model.BookingStatusCancelled
	booking.UpdatedAt = now

	s.cfg.Log.Info("Booking cancelled", "id", booking.ID, "user_id", userID)
	s.publish(ctx, events.TypeBookingCancelled, booking)
	return booking, nil
}

// ByProperty lists the bookings of a property for its owner.
func (s *bookingService) ByProperty(ctx context.Context, ownerID, propertyID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		return nil, 0, translatePropertyError(propertyID, err)
	}
	if property.OwnerID != ownerID {
		return nil, 0, apperrors.Forbidden("You can only view bookings of your own properties")
	}

	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.CountByProperty(ctx, propertyID)
		if err != nil {
			s.cfg.Log.Error("Failed to count property bookings", "property_id", propertyID, "error", err)
			errCount = apperrors.Internal("Failed to count bookings", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		bookings, err = s.repo.FindByProperty(ctx, propertyID, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list property bookings",
				"property_id", propertyID,
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve bookings", err)
		}
	}()

	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	if err := s.expireOverdue(ctx, bookings); err != nil {
		return nil, 0, err
	}
	return bookings, count, nil
}

// --- Helpers ---

// expireOverdue persists the active to expired transition for every booking
// that has ended. A booking that changed state concurrently is reloaded so
// the caller sees the stored status.
func (s *bookingService) expireOverdue(ctx context.Context, bookings []*model.Booking) error {
	now := s.now().UTC()
	for _, b := range bookings {
		if !b.IsOverdue(now) {
			continue
		}

		err := s.repo.UpdateStatus(ctx, b.ID, model.BookingStatusExpired, now)
		if errors.Is(err, bookingserrors.ErrNotActive) {
			current, findErr := s.repo.FindByID(ctx, b.ID)
			if findErr != nil {
				return apperrors.Internal("Failed to reload booking", findErr)
			}
			*b = *current
			continue
		}
		if err != nil {
			s.cfg.Log.Error("Failed to expire booking", "id", b.ID, "error", err)
			return apperrors.Internal("Failed to update booking status", err)
		}

		b.Status = model.BookingStatusExpired
		b.UpdatedAt = now
		s.cfg.Log.Info("Booking expired", "id", b.ID, "to_date", b.ToDate)
		s.publish(ctx, events.TypeBookingExpired, b)
	}
	return nil
}

func (s *bookingService) loadUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			return nil, apperrors.Unauthorized("User account no longer exists")
		}
		s.cfg.Log.Error("Failed to load user", "user_id", userID, "error", err)
		return nil, apperrors.Internal("Failed to load user", err)
	}
	return user, nil
}

// loadBookableProperty treats disabled properties as missing.
func (s *bookingService) loadBookableProperty(ctx context.Context, id string) (*model.Property, error) {
	property, err := s.properties.FindByID(ctx, id)
	if err != nil {
		return nil, translatePropertyError(id, err)
	}
	if property.IsDisabled {
		return nil, apperrors.NotFoundWithID("Property", id)
	}
	return property, nil
}

func (s *bookingService) loadOwnBooking(ctx context.Context, userID, id string) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) || errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to load booking", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	if booking.UserID != userID {
		return nil, apperrors.Forbidden("You can only access your own bookings")
	}
	return booking, nil
}

// acquirePropertyLock returns a release func that outlives request
// cancellation so an aborted request does not strand the lock until its TTL.
func (s *bookingService) acquirePropertyLock(ctx context.Context, propertyID string) (func(), error) {
	key := repository.PropertyLockKey(propertyID)
	token, ok, err := s.locker.AcquireLock(ctx, key, s.cfg.BookingLockTTL)
	if err != nil {
		s.cfg.Log.Error("Failed to acquire booking lock", "property_id", propertyID, "error", err)
		return nil, apperrors.Internal("Failed to acquire booking lock", err)
	}
	if !ok {
		return nil, apperrors.Conflict("This property is currently being booked by another request, please try again")
	}

	return func() {
		if err := s.locker.ReleaseLock(context.WithoutCancel(ctx), key, token); err != nil {
			s.cfg.Log.Warn("Failed to release booking lock", "property_id", propertyID, "error", err)
		}
	}, nil
}

// publish never fails the caller; the booking is already stored.
func (s *bookingService) publish(ctx context.Context, eventType string, b *model.Booking) {
	event := events.NewBookingEvent(eventType, b, s.now())
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.cfg.Log.Error("Failed to publish booking event",
			"event_type", eventType,
			"booking_id", b.ID,
			"error", err,
		)
	}
}

func translatePropertyError(id string, err error) error {
	if errors.Is(err, propertieserrors.ErrNotFound) || errors.Is(err, propertieserrors.ErrInvalidID) {
		return apperrors.NotFoundWithID("Property", id)
	}
	return apperrors.Internal("Failed to retrieve property", err)
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

func formatWindow(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return d.String()
}
