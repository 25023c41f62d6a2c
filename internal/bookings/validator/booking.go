package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	httputil "spacelink/pkg/http"
	"spacelink/pkg/model"

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
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, "; ")
}

func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, e := range v {
		details[e.Field] = e.Message
	}
	return details
}

// DateRange is a parsed [From, To] pair.
type DateRange struct {
	From time.Time
	To   time.Time
}

// BookingInput is a creation request after parsing.
type BookingInput struct {
	PropertyID  string
	Range       DateRange
	BookingType model.RentType
	Notes       string
}

type BookingValidator struct {
	validate *validator.Validate
}

func NewBookingValidator() *BookingValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &BookingValidator{validate: v}
}

// ValidateCreate checks that every required field is present and that the
// dates parse into a forward range. Whether the booking type is offered by
// the property is decided later, against the loaded property.
func (v *BookingValidator) ValidateCreate(req *model.BookingRequest) (*BookingInput, error) {
	if err := v.validateStruct(req); err != nil {
		return nil, err
	}

	r, err := parseRange(req.FromDate, req.ToDate)
	if err != nil {
		return nil, err
	}

	return &BookingInput{
		PropertyID:  req.PropertyID,
		Range:       r,
		BookingType: model.RentType(req.BookingType),
		Notes:       req.Notes,
	}, nil
}

func (v *BookingValidator) ValidateAvailability(req *model.AvailabilityRequest) (DateRange, error) {
	if err := v.validateStruct(req); err != nil {
		return DateRange{}, err
	}
	return parseRange(req.FromDate, req.ToDate)
}

func (v *BookingValidator) ValidatePricePreview(req *model.PricePreviewRequest) (DateRange, error) {
	if err := v.validateStruct(req); err != nil {
		return DateRange{}, err
	}
	return parseRange(req.FromDate, req.ToDate)
}

func (v *BookingValidator) validateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msg := "is required"
		if fe.Tag() == "max" {
			msg = fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		out = append(out, ValidationError{Field: fe.Field(), Message: msg})
	}
	return out
}

func parseRange(fromValue, toValue string) (DateRange, error) {
	var errs ValidationErrors

	from, err := httputil.ParseDate(fromValue)
	if err != nil {
		errs = append(errs, ValidationError{Field: "fromDate", Message: "must be a date (YYYY-MM-DD) or RFC3339 timestamp"})
	}
	to, err := httputil.ParseDate(toValue)
	if err != nil {
		errs = append(errs, ValidationError{Field: "toDate", Message: "must be a date (YYYY-MM-DD) or RFC3339 timestamp"})
	}
	if len(errs) > 0 {
		return DateRange{}, errs
	}

	if !from.Before(to) {
		return DateRange{}, ValidationErrors{{Field: "toDate", Message: "must be after fromDate"}}
	}

	return DateRange{From: from, To: to}, nil
}
