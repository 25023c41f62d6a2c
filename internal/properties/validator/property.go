package validator

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"spacelink/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

// Details renders the errors as a field to message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, e := range v {
		details[e.Field] = e.Message
	}
	return details
}

type PropertyValidator struct {
	validate *validator.Validate
}

func NewPropertyValidator() *PropertyValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("property_category", func(fl validator.FieldLevel) bool {
		return model.Category(fl.Field().String()).Valid()
	})

	return &PropertyValidator{
		validate: v,
	}
}

func (v *PropertyValidator) ValidateCreate(req *model.PropertyRequest) error {
	if err := v.validateStruct(req); err != nil {
		return err
	}
	return ValidateRentTypes(model.Category(req.Category), toRentTypes(req.RentType))
}

func (v *PropertyValidator) ValidateUpdate(req *model.PropertyUpdate) error {
	return v.validateStruct(req)
}

func (v *PropertyValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateRentTypes enforces which rental types each category may offer.
func ValidateRentTypes(category model.Category, rentTypes []model.RentType) error {
	if len(rentTypes) == 0 {
		return ValidationErrors{{Field: "rentType", Message: "at least one rent type is required"}}
	}

	var required model.RentType
	switch category {
	case model.CategoryPropertyRentals, model.CategoryCommercial:
		if slices.Contains(rentTypes, model.RentTypeHourly) {
			return ValidationErrors{{
				Field:   "rentType",
				Message: fmt.Sprintf("%s properties can only be rented monthly or yearly", category),
			}}
		}
		return nil
	case model.CategoryLand:
		required = model.RentTypeYearly
	case model.CategoryParking:
		required = model.RentTypeMonthly
	case model.CategoryEvent:
		required = model.RentTypeHourly
	default:
		return ValidationErrors{{Field: "category", Message: "must be one of " + categoryList()}}
	}

	if !slices.Contains(rentTypes, required) {
		return ValidationErrors{{
			Field:   "rentType",
			Message: fmt.Sprintf("%s properties must offer %s rent", category, required),
		}}
	}
	return nil
}

func toRentTypes(values []string) []model.RentType {
	out := make([]model.RentType, 0, len(values))
	for _, v := range values {
		out = append(out, model.RentType(v))
	}
	return out
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldPath(err),
			Message: message(err),
		})
	}

	return validationErrors
}

// fieldPath strips the struct name so "PropertyRequest.rentType[0]" becomes "rentType[0]".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return err.Field()
}

func message(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at least %s item(s)", err.Param())
		}
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "max":
		if err.Kind() == reflect.Slice {
			return fmt.Sprintf("must contain at most %s item(s)", err.Param())
		}
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", err.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(err.Param(), " ", ", "))
	case "unique":
		return "must not contain duplicates"
	case "url":
		return "must be a valid URL"
	case "property_category":
		return "must be one of " + categoryList()
	default:
		return fmt.Sprintf("failed %s validation", err.Tag())
	}
}

func categoryList() string {
	names := make([]string, 0, len(model.Categories))
	for _, c := range model.Categories {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
