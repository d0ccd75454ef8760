// Package logquery builds and runs queries against the host's system log
// facility: the systemd journal on Linux and the unified log on macOS.
package logquery

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	cerrors "github.com/DeBrosOfficial/proxyconsole/pkg/errors"
)

// MaxServiceNameLength bounds Query.ServiceName in bytes.
const MaxServiceNameLength = 256

// Query selects entries for one service.
type Query struct {
	ServiceName string  `json:"service_name" validate:"required,max=256,servicename"`
	NoPager     bool    `json:"no_pager"`
	NumLines    *uint32 `json:"num_lines,omitempty"`
	Since       string  `json:"since,omitempty"`
	Until       string  `json:"until,omitempty"`
	Reverse     bool    `json:"reverse"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("servicename", func(fl validator.FieldLevel) bool {
		return validServiceName(fl.Field().String())
	})
	return v
}

// validServiceName rejects characters that would break out of a log
// predicate or split an argument.
func validServiceName(name string) bool {
	return !strings.ContainsAny(name, " \t\r\n\v\f'\"`\\")
}

// Validate checks q before it is turned into a command.
func (q Query) Validate() error {
	name := strings.TrimSpace(q.ServiceName)
	if name == "" {
		return cerrors.NewValidationError("service_name", "service name is required", q.ServiceName)
	}
	// The max tag counts runes.
	if len(q.ServiceName) > MaxServiceNameLength {
		return cerrors.NewValidationError("service_name",
			fmt.Sprintf("service name exceeds %d bytes", MaxServiceNameLength), nil)
	}
	if err := validate.Struct(q); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return cerrors.NewValidationError("service_name", describe(fieldErrs[0]), q.ServiceName)
		}
		return cerrors.NewValidationError("query", err.Error(), nil)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "max":
		return fmt.Sprintf("service name exceeds %d bytes", MaxServiceNameLength)
	case "servicename":
		return "service name must not contain whitespace, quotes or backslashes"
	case "required":
		return "service name is required"
	}
	return fmt.Sprintf("invalid %s", strings.ToLower(fe.Field()))
}

// normalizeTime trims v and replaces the ISO date/time separator with a
// space, the form both facilities accept.
func normalizeTime(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 10 && v[10] == 'T' {
		v = v[:10] + " " + v[11:]
	}
	return v
}
