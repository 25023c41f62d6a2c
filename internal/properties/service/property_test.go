package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	propertieserrors "spacelink/internal/properties/errors"
	"spacelink/internal/properties/validator"
	"spacelink/pkg/config"
	apperrors "spacelink/pkg/errors"
	"spacelink/pkg/logger"
	"spacelink/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPropertyRepository struct {
	createFunc      func(ctx context.Context, p *model.Property) error
	findByIDFunc    func(ctx context.Context, id string) (*model.Property, error)
	findFunc        func(ctx context.Context, filter model.PropertyFilter, limit int, offset int64) ([]*model.Property, error)
	countFunc       func(ctx context.Context, filter model.PropertyFilter) (int64, error)
	updateFunc      func(ctx context.Context, p *model.Property) error
	setDisabledFunc func(ctx context.Context, id string, disabled bool, at time.Time) error
}

func (m *mockPropertyRepository) Create(ctx context.Context, p *model.Property) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	p.ID = "prop-1"
	return nil
}

func (m *mockPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, propertieserrors.ErrNotFound
}

func (m *mockPropertyRepository) FindByIDs(ctx context.Context, ids []string) (map[string]*model.Property, error) {
	return map[string]*model.Property{}, nil
}

func (m *mockPropertyRepository) Find(ctx context.Context, filter model.PropertyFilter, limit int, offset int64) ([]*model.Property, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, filter, limit, offset)
	}
	return []*model.Property{}, nil
}

func (m *mockPropertyRepository) Count(ctx context.Context, filter model.PropertyFilter) (int64, error) {
	if m.countFunc != nil {
		return m.countFunc(ctx, filter)
	}
	return 0, nil
}

func (m *mockPropertyRepository) Update(ctx context.Context, p *model.Property) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, p)
	}
	return nil
}

func (m *mockPropertyRepository) SetDisabled(ctx context.Context, id string, disabled bool, at time.Time) error {
	if m.setDisabledFunc != nil {
		return m.setDisabledFunc(ctx, id, disabled, at)
	}
	return nil
}

type mockCache struct {
	mu          sync.Mutex
	items       map[string]*model.Property
	invalidated []string
}

func newMockCache() *mockCache {
	return &mockCache{items: map[string]*model.Property{}}
}

func (c *mockCache) GetProperty(_ context.Context, id string) (*model.Property, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items[id], nil
}

func (c *mockCache) SetProperty(_ context.Context, p *model.Property) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[p.ID] = p
	return nil
}

func (c *mockCache) InvalidateProperty(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:         logger.Discard(),
		ReadTimeout: 5 * time.Second,
	}
}

func parking(owner string) *model.Property {
	return &model.Property{
		ID:       "prop-1",
		OwnerID:  owner,
		Title:    "Parking",
		Category: model.CategoryParking,
		RentType: []model.RentType{model.RentTypeMonthly},
		Price:    500,
		Address:  "12 Main Street",
	}
}

func TestCreate_SanitizesAndPersists(t *testing.T) {
	var saved *model.Property
	repo := &mockPropertyRepository{
		createFunc: func(ctx context.Context, p *model.Property) error {
			p.ID = "prop-1"
			saved = p
			return nil
		},
	}
	svc := NewPropertyService(repo, validator.NewPropertyValidator(), nil, testConfig())

	created, err := svc.Create(context.Background(), "owner-1", &model.PropertyRequest{
		Title:    "  Downtown   parking ",
		Category: "Parking",
		RentType: []string{" monthly ", "monthly", "hourly"},
		Price:    500,
		Address:  "12 Main Street",
	})
	require.NoError(t, err)
	require.NotNil(t, saved)

	assert.Equal(t, "prop-1", created.ID)
	assert.Equal(t, "owner-1", created.OwnerID)
	assert.Equal(t, "Downtown parking", created.Title)
	assert.Equal(t, []model.RentType{model.RentTypeMonthly, model.RentTypeHourly}, created.RentType)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCreate_RejectsCategoryRule(t *testing.T) {
	svc := NewPropertyService(&mockPropertyRepository{}, validator.NewPropertyValidator(), nil, testConfig())

	_, err := svc.Create(context.Background(), "owner-1", &model.PropertyRequest{
		Title:    "Event hall",
		Category: "Event",
		RentType: []string{"monthly"},
		Address:  "1 Hall Road",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestGetByID_ReadThroughCache(t *testing.T) {
	calls := 0
	repo := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			calls++
			return parking("owner-1"), nil
		},
	}
	cache := newMockCache()
	svc := NewPropertyService(repo, validator.NewPropertyValidator(), cache, testConfig())

	for i := 0; i < 3; i++ {
		p, err := svc.GetByID(context.Background(), "prop-1")
		require.NoError(t, err)
		assert.Equal(t, "prop-1", p.ID)
	}
	assert.Equal(t, 1, calls)
}

func TestGetByID_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"not found", propertieserrors.ErrNotFound, apperrors.CodeNotFound},
		{"invalid id", propertieserrors.ErrInvalidID, apperrors.CodeValidation},
		{"storage failure", errors.New("boom"), apperrors.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockPropertyRepository{
				findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
					return nil, tt.err
				},
			}
			svc := NewPropertyService(repo, validator.NewPropertyValidator(), nil, testConfig())

			_, err := svc.GetByID(context.Background(), "abc")
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestList_FilterAndNormalization(t *testing.T) {
	var gotFilter model.PropertyFilter
	var gotLimit int
	repo := &mockPropertyRepository{
		findFunc: func(ctx context.Context, filter model.PropertyFilter, limit int, offset int64) ([]*model.Property, error) {
			gotFilter = filter
			gotLimit = limit
			return []*model.Property{parking("o")}, nil
		},
		countFunc: func(ctx context.Context, filter model.PropertyFilter) (int64, error) {
			return 42, nil
		},
	}
	svc := NewPropertyService(repo, validator.NewPropertyValidator(), nil, testConfig())

	props, total, err := svc.List(context.Background(), model.CategoryParking, 500, -3)
	require.NoError(t, err)
	assert.Len(t, props, 1)
	assert.Equal(t, int64(42), total)
	assert.Equal(t, model.CategoryParking, gotFilter.Category)
	assert.False(t, gotFilter.IncludeDisabled)
	assert.Equal(t, config.DefaultPaginationLimit, gotLimit)

	_, _, err = svc.List(context.Background(), "Castle", 10, 0)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestListByOwner_IncludesDisabled(t *testing.T) {
	var gotFilter model.PropertyFilter
	repo := &mockPropertyRepository{
		findFunc: func(ctx context.Context, filter model.PropertyFilter, limit int, offset int64) ([]*model.Property, error) {
			gotFilter = filter
			return nil, nil
		},
	}
	svc := NewPropertyService(repo, validator.NewPropertyValidator(), nil, testConfig())

	_, _, err := svc.ListByOwner(context.Background(), "owner-1", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", gotFilter.OwnerID)
	assert.True(t, gotFilter.IncludeDisabled)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	repo := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return parking("owner-1"), nil
		},
	}
	svc := NewPropertyService(repo, validator.NewPropertyValidator(), nil, testConfig())

	title := "New title"
	_, err := svc.Update(context.Background(), "intruder", "prop-1", &model.PropertyUpdate{Title: &title})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}

func TestUpdate_RevalidatesMergedRules(t *testing.T) {
	updated := false
	repo := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return parking("owner-1"), nil
		},
		updateFunc: func(ctx context.Context, p *model.Property) error {
			updated = true
			return nil
		},
	}
	svc := NewPropertyService(repo, validator.NewPropertyValidator(), nil, testConfig())

	// Parking without monthly is not allowed.
	_, err := svc.Update(context.Background(), "owner-1", "prop-1", &model.PropertyUpdate{RentType: []string{"hourly"}})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.False(t, updated)
}

func TestUpdate_InvalidatesCache(t *testing.T) {
	repo := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return parking("owner-1"), nil
		},
	}
	cache := newMockCache()
	svc := NewPropertyService(repo, validator.NewPropertyValidator(), cache, testConfig())

	price := 750.0
	p, err := svc.Update(context.Background(), "owner-1", "prop-1", &model.PropertyUpdate{Price: &price})
	require.NoError(t, err)
	assert.Equal(t, 750.0, p.Price)
	assert.Equal(t, []string{"prop-1"}, cache.invalidated)
}

func TestSetDisabled(t *testing.T) {
	var gotDisabled bool
	repo := &mockPropertyRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Property, error) {
			return parking("owner-1"), nil
		},
		setDisabledFunc: func(ctx context.Context, id string, disabled bool, at time.Time) error {
			gotDisabled = disabled
			return nil
		},
	}
	svc := NewPropertyService(repo, validator.NewPropertyValidator(), nil, testConfig())

	p, err := svc.SetDisabled(context.Background(), "owner-1", "prop-1", true)
	require.NoError(t, err)
	assert.True(t, gotDisabled)
	assert.True(t, p.IsDisabled)

	_, err = svc.SetDisabled(context.Background(), "someone-else", "prop-1", false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
}
