package config

import (
	"fmt"
	"net"
	"net/netip"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/maksimkurb/keen-targets/src/internal/output"
	"github.com/maksimkurb/keen-targets/src/internal/resolver/upstreams"
	"github.com/maksimkurb/keen-targets/src/internal/utils"
)

// getValidationMessage returns a human-readable message for a validation error
func getValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "gte":
		return fmt.Sprintf("must be >= %s", e.Param())
	case "lte":
		return fmt.Sprintf("must be <= %s", e.Param())
	case "target":
		return "must be a non-empty IP, CIDR, hostname or file path on a single line"
	case "resolver_source":
		return "must be a nameserver file path or a comma-separated nameserver list on a single line"
	case "hostport_or_empty":
		return "must be in format 'host:port' or empty"
	case "output_template":
		return "must be a valid template using only {{ip}}, {{family}} and {{index}}"
	default:
		return fmt.Sprintf("validation failed: %s", e.Tag())
	}
}

// ValidationError represents a single validation error with context
type ValidationError struct {
	ItemName  string // Offending value for list entries (e.g. a target token)
	FieldPath string // Dot-notation field path (e.g., "targets.addresses.0", "resolver.qps")
	Message   string // Human-readable error message
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("validation failed with %d error(s):\n", len(ve)))
	for i, err := range ve {
		if err.ItemName != "" {
			sb.WriteString(fmt.Sprintf("  %d. [%s] %s: %s\n", i+1, err.ItemName, err.FieldPath, err.Message))
		} else {
			sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.FieldPath, err.Message))
		}
	}
	return sb.String()
}

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Register custom validators
	if err := validate.RegisterValidation("target", validateTarget); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("resolver_source", validateResolverSource); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("hostport_or_empty", validateHostPortOrEmpty); err != nil {
		panic(err)
	}
	if err := validate.RegisterValidation("output_template", validateOutputTemplate); err != nil {
		panic(err)
	}

	// Register function to get field name from "toml" tag
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validator: a single-line, non-blank target token
func validateTarget(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return strings.TrimSpace(value) != "" && !strings.ContainsAny(value, "\r\n")
}

// Custom validator: a nameserver file path or comma list on a single line.
// Whether it holds a usable nameserver is only warned about, see usableResolverSource.
func validateResolverSource(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return strings.TrimSpace(value) != "" && !strings.ContainsAny(value, "\r\n")
}

// usableResolverSource mirrors how the resolver provider reads a source.
func usableResolverSource(source string) error {
	if utils.IsRegularFile(source) {
		return nil
	}

	for _, entry := range strings.Split(source, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if _, err := netip.ParseAddr(entry); err == nil {
			return nil
		}
		if strings.Contains(entry, "://") {
			if _, err := upstreams.Parse(entry, 0); err == nil {
				return nil
			}
		}
	}
	return fmt.Errorf("no usable nameserver in %q", source)
}

// Custom validator: host:port format or empty
func validateHostPortOrEmpty(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	_, _, err := net.SplitHostPort(value)
	return err == nil
}

// Custom validator: fasttemplate output line template
func validateOutputTemplate(fl validator.FieldLevel) bool {
	return output.ValidateTemplate(fl.Field().String()) == nil
}
