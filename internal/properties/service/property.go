package service

import (
	"context"
	"errors"
	propertieserrors "spacelink/internal/properties/errors"
	"spacelink/internal/properties/repository"
	"spacelink/internal/properties/validator"
	"spacelink/pkg/config"
	apperrors "spacelink/pkg/errors"
	"spacelink/pkg/model"
	"spacelink/pkg/sanitizer"
	"sync"
	"time"
)

type PropertyService interface {
	Create(ctx context.Context, ownerID string, req *model.PropertyRequest) (*model.Property, error)
	GetByID(ctx context.Context, id string) (*model.Property, error)
	List(ctx context.Context, category model.Category, limit int, offset int64) ([]*model.Property, int64, error)
	ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, int64, error)
	Update(ctx context.Context, ownerID, id string, updates *model.PropertyUpdate) (*model.Property, error)
	SetDisabled(ctx context.Context, ownerID, id string, disabled bool) (*model.Property, error)
}

// PropertyCache is the optional read-through cache in front of FindByID.
type PropertyCache interface {
	GetProperty(ctx context.Context, id string) (*model.Property, error)
	SetProperty(ctx context.Context, property *model.Property) error
	InvalidateProperty(ctx context.Context, id string) error
}

type propertyService struct {
	repo      repository.PropertyRepository
	validator *validator.PropertyValidator
	cache     PropertyCache
	cfg       *config.Config
	now       func() time.Time
}

// NewPropertyService builds the service. cache may be nil.
func NewPropertyService(
	repo repository.PropertyRepository,
	validator *validator.PropertyValidator,
	cache PropertyCache,
	cfg *config.Config,
) PropertyService {
	return &propertyService{
		repo:      repo,
		validator: validator,
		cache:     cache,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *propertyService) Create(ctx context.Context, ownerID string, req *model.PropertyRequest) (*model.Property, error) {
	s.sanitize(req)

	if err := s.validator.ValidateCreate(req); err != nil {
		s.cfg.Log.Warn("Property validation failed",
			"owner_id", ownerID,
			"title", req.Title,
			"error", err,
		)
		return nil, validationError(err)
	}

	now := s.now().UTC()
	property := &model.Property{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Category:    model.Category(req.Category),
		RentType:    toRentTypes(req.RentType),
		Price:       req.Price,
		Address:     req.Address,
		City:        req.City,
		Images:      req.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, property); err != nil {
		s.cfg.Log.Error("Failed to create property",
			"owner_id", ownerID,
			"title", property.Title,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to create property", err)
	}

	s.cfg.Log.Info("Property created successfully",
		"id", property.ID,
		"owner_id", ownerID,
		"category", property.Category,
		"rent_type", property.RentType,
	)
	return property, nil
}

func (s *propertyService) GetByID(ctx context.Context, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.Validation("Property ID cannot be empty", nil)
	}

	if s.cache != nil {
		cached, err := s.cache.GetProperty(ctx, id)
		if err != nil {
			s.cfg.Log.Warn("Property cache read failed", "id", id, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateFindError(id, err)
	}

	if s.cache != nil {
		if err := s.cache.SetProperty(ctx, property); err != nil {
			s.cfg.Log.Warn("Property cache write failed", "id", id, "error", err)
		}
	}
	return property, nil
}

func (s *propertyService) List(ctx context.Context, category model.Category, limit int, offset int64) ([]*model.Property, int64, error) {
	if category != "" && !category.Valid() {
		return nil, 0, apperrors.Validation("Invalid category", map[string]any{"category": string(category)})
	}
	return s.list(ctx, model.PropertyFilter{Category: category}, limit, offset)
}

// ListByOwner includes disabled listings so owners can re-enable them.
func (s *propertyService) ListByOwner(ctx context.Context, ownerID string, limit int, offset int64) ([]*model.Property, int64, error) {
	return s.list(ctx, model.PropertyFilter{OwnerID: ownerID, IncludeDisabled: true}, limit, offset)
}

func (s *propertyService) list(ctx context.Context, filter model.PropertyFilter, limit int, offset int64) ([]*model.Property, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	var count int64
	var properties []*model.Property
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		count, err = s.repo.Count(ctx, filter)
		if err != nil {
			s.cfg.Log.Error("Failed to count properties", "error", err)
			errCount = apperrors.Internal("Failed to count properties", err)
		}
	}()

	go func() {
		defer wg.Done()
		var err error
		properties, err = s.repo.Find(ctx, filter, limit, offset)
		if err != nil {
			s.cfg.Log.Error("Failed to list properties",
				"limit", limit,
				"offset", offset,
				"error", err,
			)
			errFind = apperrors.Internal("Failed to retrieve properties", err)
		}
	}()
	wg.Wait()

	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return properties, count, nil
}

func (s *propertyService) Update(ctx context.Context, ownerID, id string, updates *model.PropertyUpdate) (*model.Property, error) {
	existing, err := s.ownedProperty(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	s.sanitizeUpdate(updates)
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, validationError(err)
	}

	merged := mergePropertyUpdates(existing, updates)
	if err := validator.ValidateRentTypes(merged.Category, merged.RentType); err != nil {
		return nil, validationError(err)
	}
	merged.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, merged); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		s.cfg.Log.Error("Failed to update property", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update property", err)
	}
	s.invalidate(ctx, id)

	s.cfg.Log.Info("Property updated successfully", "id", id, "owner_id", ownerID)
	return merged, nil
}

func (s *propertyService) SetDisabled(ctx context.Context, ownerID, id string, disabled bool) (*model.Property, error) {
	existing, err := s.ownedProperty(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	at := s.now().UTC()
	if err := s.repo.SetDisabled(ctx, id, disabled, at); err != nil {
		if errors.Is(err, propertieserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Property", id)
		}
		s.cfg.Log.Error("Failed to change property availability",
			"id", id,
			"disabled", disabled,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to update property", err)
	}
	s.invalidate(ctx, id)

	existing.IsDisabled = disabled
	existing.UpdatedAt = at

	s.cfg.Log.Info("Property availability changed", "id", id, "disabled", disabled)
	return existing, nil
}

// ownedProperty always reads through to the database so a stale cache
// entry cannot authorize a write.
func (s *propertyService) ownedProperty(ctx context.Context, ownerID, id string) (*model.Property, error) {
	if id == "" {
		return nil, apperrors.Validation("Property ID cannot be empty", nil)
	}

	property, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateFindError(id, err)
	}
	if property.OwnerID != ownerID {
		return nil, apperrors.Forbidden("Only the property owner can modify this property")
	}
	return property, nil
}

func (s *propertyService) invalidate(ctx context.Context, id string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateProperty(ctx, id); err != nil {
		s.cfg.Log.Warn("Property cache invalidation failed", "id", id, "error", err)
	}
}

func (s *propertyService) translateFindError(id string, err error) error {
	if errors.Is(err, propertieserrors.ErrNotFound) {
		return apperrors.NotFoundWithID("Property", id)
	}
	if errors.Is(err, propertieserrors.ErrInvalidID) {
		return apperrors.Validation("Invalid property ID format", nil)
	}
	s.cfg.Log.Error("Failed to get property by ID", "id", id, "error", err)
	return apperrors.Internal("Failed to retrieve property", err)
}

func (s *propertyService) sanitize(req *model.PropertyRequest) {
	req.Title = sanitizer.NormalizeText(req.Title)
	req.Description = sanitizer.NormalizeMultiline(req.Description)
	req.Category = sanitizer.TrimAndNormalize(req.Category)
	req.RentType = sanitizer.NormalizeStringSlice(req.RentType, sanitizer.TrimAndNormalize)
	req.Address = sanitizer.NormalizeText(req.Address)
	req.City = sanitizer.NormalizeText(req.City)
	req.Images = sanitizer.NormalizeURLs(req.Images)
}

func (s *propertyService) sanitizeUpdate(updates *model.PropertyUpdate) {
	if updates.Title != nil {
		*updates.Title = sanitizer.NormalizeText(*updates.Title)
	}
	if updates.Description != nil {
		*updates.Description = sanitizer.NormalizeMultiline(*updates.Description)
	}
	if updates.Category != nil {
		*updates.Category = sanitizer.TrimAndNormalize(*updates.Category)
	}
	if len(updates.RentType) > 0 {
		updates.RentType = sanitizer.NormalizeStringSlice(updates.RentType, sanitizer.TrimAndNormalize)
	}
	if updates.Address != nil {
		*updates.Address = sanitizer.NormalizeText(*updates.Address)
	}
	if updates.City != nil {
		*updates.City = sanitizer.NormalizeText(*updates.City)
	}
	if len(updates.Images) > 0 {
		updates.Images = sanitizer.NormalizeURLs(updates.Images)
	}
}

func mergePropertyUpdates(existing *model.Property, updates *model.PropertyUpdate) *model.Property {
	merged := *existing
	if updates.Title != nil {
		merged.Title = *updates.Title
	}
	if updates.Description != nil {
		merged.Description = *updates.Description
	}
	if updates.Category != nil {
		merged.Category = model.Category(*updates.Category)
	}
	if len(updates.RentType) > 0 {
		merged.RentType = toRentTypes(updates.RentType)
	}
	if updates.Price != nil {
		merged.Price = *updates.Price
	}
	if updates.Address != nil {
		merged.Address = *updates.Address
	}
	if updates.City != nil {
		merged.City = *updates.City
	}
	if updates.Images != nil {
		merged.Images = updates.Images
	}
	return &merged
}

func toRentTypes(values []string) []model.RentType {
	out := make([]model.RentType, 0, len(values))
	for _, v := range values {
		out = append(out, model.RentType(v))
	}
	return out
}

func validationError(err error) error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		return apperrors.Validation("Property validation failed", errs.Details())
	}
	return apperrors.Validation("Property validation failed", map[string]any{"error": err.Error()})
}
