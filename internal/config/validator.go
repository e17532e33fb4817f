package config

import (
	"errors"
	"fmt"
	"strings"

	"arrivatui/internal/query"

	"github.com/go-playground/validator/v10"
)

var fieldKeys = map[string]string{
	"StopsURL":    "stops_url",
	"TripsURL":    "trips_url",
	"UserAgent":   "user_agent",
	"Timeout":     "timeout",
	"Date":        "date",
	"MetricsAddr": "metrics_addr",
	"GTFSPath":    "gtfs_path",
}

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("ddmmyyyy", func(fl validator.FieldLevel) bool {
		return query.ValidateDate(fl.Field().String()) == nil
	})
	return v
}

// Validate checks cfg and reports every invalid key at once.
func Validate(cfg Config) error {
	err := newValidator().Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	msgs := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(msgs, "\n  "))
}

func describe(fe validator.FieldError) string {
	key := fieldKeys[fe.Field()]
	if key == "" {
		key = fe.Field()
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "url":
		return fmt.Sprintf("%s must be a URL, got: %v", key, fe.Value())
	case "gt":
		return fmt.Sprintf("%s must be positive, got: %v", key, fe.Value())
	case "ddmmyyyy":
		return fmt.Sprintf("%s must be a DD-MM-YYYY date, got: %v", key, fe.Value())
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port, got: %v", key, fe.Value())
	case "file":
		return fmt.Sprintf("%s must be an existing file, got: %v", key, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s check, got: %v", key, fe.Tag(), fe.Value())
	}
}
