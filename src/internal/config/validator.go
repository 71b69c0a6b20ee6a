package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/maksimkurb/keen-targets/src/internal/log"
)

// ValidateConfig validates the entire configuration and returns all validation errors
func (c *Config) ValidateConfig() error {
	var validationErrors ValidationErrors

	if c.General == nil {
		validationErrors = append(validationErrors, ValidationError{
			FieldPath: "general",
			Message:   "configuration must contain 'general' section",
		})
		return validationErrors
	}

	if err := validate.Struct(c.General); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "general", "")...)
	}

	if c.Targets != nil {
		validationErrors = append(validationErrors, c.validateTargets()...)
	}

	if c.Resolver != nil {
		if err := validate.Struct(c.Resolver); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "resolver", "")...)
		}
	}

	if c.API != nil {
		if err := validate.Struct(c.API); err != nil {
			validationErrors = append(validationErrors, convertValidatorErrors(err, "api", "")...)
		}
	}

	if len(validationErrors) > 0 {
		return validationErrors
	}

	return nil
}

func (c *Config) validateTargets() ValidationErrors {
	var validationErrors ValidationErrors

	if err := validate.Struct(c.Targets); err != nil {
		validationErrors = append(validationErrors, convertValidatorErrors(err, "targets", "")...)
	}

	// An unusable resolver source falls back to the system configuration at
	// run time, so it is not an error
	if c.Targets.Resolver != "" {
		if err := usableResolverSource(c.Targets.Resolver); err != nil {
			log.Warnf("targets.resolver: %v, the system resolver configuration will be used instead", err)
		}
	}

	// Duplicates are harmless for the result but usually a typo
	seen := make(map[string]bool)
	for i, addr := range c.Targets.Addresses {
		if seen[addr] {
			validationErrors = append(validationErrors, ValidationError{
				ItemName:  addr,
				FieldPath: fmt.Sprintf("targets.addresses.%d", i),
				Message:   fmt.Sprintf("duplicate target: %s", addr),
			})
		}
		seen[addr] = true
	}

	return validationErrors
}

// convertValidatorErrors converts go-playground/validator errors to our ValidationError format
func convertValidatorErrors(err error, fieldPrefix string, itemName string) ValidationErrors {
	var validationErrors ValidationErrors

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, e := range validatorErrs {
			fieldPath := fieldPrefix
			if e.Field() != "" {
				// e.Field() returns the TOML tag name because we registered TagNameFunc;
				// dive errors come as "addresses[2]"
				fieldName := e.Field()

				if fieldPrefix != "" {
					fieldPath = fieldPrefix + "." + fieldName
				} else {
					fieldPath = fieldName
				}
			}

			name := itemName
			if name == "" && e.Kind() == reflect.String {
				name = fmt.Sprintf("%v", e.Value())
			}

			validationErrors = append(validationErrors, ValidationError{
				ItemName:  name,
				FieldPath: fieldPath,
				Message:   getValidationMessage(e),
			})
		}
	}

	return validationErrors
}
