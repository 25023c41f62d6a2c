package model

import (
	"slices"
	"time"
)

type RentType string

const (
	RentTypeHourly  RentType = "hourly"
	RentTypeMonthly RentType = "monthly"
	RentTypeYearly  RentType = "yearly"
)

var RentTypes = []RentType{RentTypeMonthly, RentTypeYearly, RentTypeHourly}

func (r RentType) Valid() bool {
	return slices.Contains(RentTypes, r)
}

type Category string

const (
	CategoryPropertyRentals Category = "Property Rentals"
	CategoryCommercial      Category = "Commercial"
	CategoryLand            Category = "Land"
	CategoryParking         Category = "Parking"
	CategoryEvent           Category = "Event"
)

var Categories = []Category{
	CategoryPropertyRentals,
	CategoryCommercial,
	CategoryLand,
	CategoryParking,
	CategoryEvent,
}

func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

type Property struct {
	ID          string     `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID     string     `json:"ownerId" bson:"owner_id"`
	Title       string     `json:"title" bson:"title"`
	Description string     `json:"description,omitempty" bson:"description,omitempty"`
	Category    Category   `json:"category" bson:"category"`
	RentType    []RentType `json:"rentType" bson:"rent_type"`
	Price       float64    `json:"price" bson:"price"`
	Address     string     `json:"address" bson:"address"`
	City        string     `json:"city,omitempty" bson:"city,omitempty"`
	Images      []string   `json:"images,omitempty" bson:"images,omitempty"`
	IsDisabled  bool       `json:"isDisabled" bson:"is_disabled"`
	CreatedAt   time.Time  `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" bson:"updated_at"`
}

// Supports reports whether the property can be rented under t.
func (p *Property) Supports(t RentType) bool {
	return slices.Contains(p.RentType, t)
}

func (p *Property) Summary() *PropertySummary {
	return &PropertySummary{
		ID:       p.ID,
		Title:    p.Title,
		Category: p.Category,
		Address:  p.Address,
		City:     p.City,
		Price:    p.Price,
	}
}

type PropertySummary struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Address  string   `json:"address"`
	City     string   `json:"city,omitempty"`
	Price    float64  `json:"price"`
}

type PropertyRequest struct {
	Title       string   `json:"title" validate:"required,min=3,max=120"`
	Description string   `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category    string   `json:"category" validate:"required,property_category"`
	RentType    []string `json:"rentType" validate:"required,min=1,max=3,unique,dive,oneof=monthly yearly hourly"`
	Price       float64  `json:"price" validate:"gte=0"`
	Address     string   `json:"address" validate:"required,min=3,max=300"`
	City        string   `json:"city,omitempty" validate:"omitempty,max=100"`
	Images      []string `json:"images,omitempty" validate:"omitempty,max=20,dive,url"`
}

type PropertyUpdate struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=3,max=120"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=5000"`
	Category    *string  `json:"category,omitempty" validate:"omitempty,property_category"`
	RentType    []string `json:"rentType,omitempty" validate:"omitempty,min=1,max=3,unique,dive,oneof=monthly yearly hourly"`
	Price       *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Address     *string  `json:"address,omitempty" validate:"omitempty,min=3,max=300"`
	City        *string  `json:"city,omitempty" validate:"omitempty,max=100"`
	Images      []string `json:"images,omitempty" validate:"omitempty,max=20,dive,url"`
}

type PropertyFilter struct {
	Category        Category
	OwnerID         string
	IncludeDisabled bool
}
