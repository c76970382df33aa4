// Tasklane - Project and Task Tracking Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tasklane

package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/tasklane/internal/models"
	"github.com/tomtom215/tasklane/internal/triage"
)

// CodeValidation is the API error code of every validation failure.
const CodeValidation = "VALIDATION_ERROR"

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// ValidationError is a single field failure.
type ValidationError struct {
	field   string
	tag     string
	param   string
	value   any
	message string
}

// Field returns the struct field name that failed validation.
func (e *ValidationError) Field() string {
	return e.field
}

// Tag returns the validation tag that failed.
func (e *ValidationError) Tag() string {
	return e.tag
}

// Param returns the tag parameter, "200" for max=200.
func (e *ValidationError) Param() string {
	return e.param
}

// Value returns the rejected value.
func (e *ValidationError) Value() any {
	return e.value
}

// Error returns a human-readable message.
func (e *ValidationError) Error() string {
	return e.message
}

// RequestValidationError collects the field failures of one request.
type RequestValidationError struct {
	errors []ValidationError
}

// Errors returns the field failures.
func (ve *RequestValidationError) Errors() []ValidationError {
	return ve.errors
}

// Error joins the field messages.
func (ve *RequestValidationError) Error() string {
	if len(ve.errors) == 0 {
		return "validation failed"
	}
	messages := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		messages[i] = err.Error()
	}
	return strings.Join(messages, "; ")
}

// APIError mirrors the api package's error body without importing it.
type APIError struct {
	Code    string
	Message string
	Details map[string]any
}

// ToAPIError converts the failures to the API error format.
func (ve *RequestValidationError) ToAPIError() *APIError {
	if len(ve.errors) == 0 {
		return &APIError{Code: CodeValidation, Message: "Validation failed"}
	}

	if len(ve.errors) == 1 {
		err := ve.errors[0]
		return &APIError{
			Code:    CodeValidation,
			Message: err.message,
			Details: map[string]any{
				"field": err.field,
				"tag":   err.tag,
				"value": err.value,
			},
		}
	}

	fields := make([]map[string]any, len(ve.errors))
	messages := make([]string, len(ve.errors))
	for i, err := range ve.errors {
		fields[i] = map[string]any{
			"field":   err.field,
			"tag":     err.tag,
			"message": err.message,
		}
		messages[i] = fmt.Sprintf("%s: %s", err.field, err.message)
	}

	return &APIError{
		Code:    CodeValidation,
		Message: strings.Join(messages, "; "),
		Details: map[string]any{"fields": fields},
	}
}

// GetValidator returns the shared validator, registering the custom tags on
// first use.
func GetValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		mustRegister(v, "bucket", func(fl validator.FieldLevel) bool {
			b, err := triage.ParseBucket(fl.Field().String())
			return err == nil && b != triage.BucketSchedule
		})
		mustRegister(v, "entitytype", func(fl validator.FieldLevel) bool {
			return models.EntityType(fl.Field().String()).Valid()
		})
		mustRegister(v, "parenttype", func(fl validator.FieldLevel) bool {
			return models.ParentType(fl.Field().String()).Valid()
		})
		v.RegisterStructValidation(scheduleSpan, ScheduleRequest{})
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// ValidateStruct validates s and returns nil when it passes.
func ValidateStruct(s any) *RequestValidationError {
	err := GetValidator().Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return &RequestValidationError{
			errors: []ValidationError{{field: "unknown", tag: "unknown", message: err.Error()}},
		}
	}

	fieldErrors := make([]ValidationError, len(validationErrs))
	for i, fieldErr := range validationErrs {
		fieldErrors[i] = ValidationError{
			field:   fieldErr.Field(),
			tag:     fieldErr.Tag(),
			param:   fieldErr.Param(),
			value:   fieldErr.Value(),
			message: translateError(fieldErr),
		}
	}
	return &RequestValidationError{errors: fieldErrors}
}

// errorMessageTemplates maps tags without a parameter to messages.
var errorMessageTemplates = map[string]string{
	"required":   "%s is required",
	"e164":       "%s must be a phone number in E.164 format",
	"bucket":     "%s must be a paginated bucket name",
	"entitytype": "%s must be one of: user project membership task",
	"parenttype": "%s must be one of: task comment user project membership",
	"dive":       "%s contains an invalid element",
	"maxspan":    "%s must be within 366 days of From",
}

// errorMessageWithParam maps tags whose message includes the parameter.
var errorMessageWithParam = map[string]string{
	"oneof":    "%s must be one of: %s",
	"gte":      "%s must be greater than or equal to %s",
	"lte":      "%s must be less than or equal to %s",
	"gt":       "%s must be greater than %s",
	"lt":       "%s must be less than %s",
	"gtefield": "%s must not precede %s",
}

func translateError(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	if template, ok := errorMessageTemplates[tag]; ok {
		return fmt.Sprintf(template, field)
	}
	if template, ok := errorMessageWithParam[tag]; ok {
		return fmt.Sprintf(template, field, param)
	}
	return translateMinMax(fe, field, tag, param)
}

// translateMinMax words min and max by kind: characters for strings,
// elements for slices.
func translateMinMax(fe validator.FieldError, field, tag, param string) string {
	unit := ""
	switch fe.Kind().String() {
	case "string":
		unit = " characters"
	case "slice":
		unit = " elements"
	}

	switch tag {
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", field, param, unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", field, param, unit)
	default:
		return fmt.Sprintf("%s failed %s validation", field, tag)
	}
}
