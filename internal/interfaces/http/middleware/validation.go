package middleware

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/Nadifnugraha/dicowi/internal/domain/analytics"
	"github.com/Nadifnugraha/dicowi/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var setupOnce sync.Once

// SetupValidator configures gin's validator: field names come from the
// form and json tags, and the filter tags season, month_bucket and
// granularity are registered. Safe to call more than once.
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}

		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			}
			if name == "-" {
				return ""
			}
			return name
		})

		_ = v.RegisterValidation("season", validateSeason)
		_ = v.RegisterValidation("month_bucket", validateMonthBucket)
		_ = v.RegisterValidation("granularity", validateGranularity)
	})
}

func isAllOption(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), analytics.All)
}

func validateSeason(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if isAllOption(s) {
		return true
	}
	_, err := analytics.ParseSeason(s)
	return err == nil
}

func validateMonthBucket(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if isAllOption(s) {
		return true
	}
	_, err := time.Parse(analytics.MonthLayout, strings.TrimSpace(s))
	return err == nil
}

func validateGranularity(fl validator.FieldLevel) bool {
	_, err := analytics.ParseGranularity(fl.Field().String())
	return err == nil
}

// ValidationDetails converts binding errors into response details. A nil
// result means err is not a validation error.
func ValidationDetails(err error) []dto.ValidationDetail {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	details := make([]dto.ValidationDetail, 0, len(validationErrors))
	for _, e := range validationErrors {
		details = append(details, dto.ValidationDetail{
			Field:   e.Field(),
			Message: validationMessage(e),
		})
	}
	return details
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "numeric":
		return "Must contain digits only"
	case "min":
		return "Must be at least " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "Must be at most " + e.Param() + " characters"
		}
		return "Must be at most " + e.Param()
	case "oneof":
		return "Must be one of: " + e.Param()
	case "datetime":
		return "Must be a date formatted as YYYY-MM-DD"
	case "season":
		return "Must be Winter, Spring, Summer, Fall or All"
	case "month_bucket":
		return "Must be a month formatted as YYYY-MM or All"
	case "granularity":
		return "Must be day, month or season"
	default:
		return "Invalid value"
	}
}
