// Package handler serves the JSON API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/chorecal/internal/recurrence"
	"github.com/dukerupert/chorecal/internal/websocket"
)

var hexColorRegexp = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

var validate = newValidator()

var errNameRequired = errors.New("name is required")

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	v.RegisterValidation("ymd", func(fl validator.FieldLevel) bool {
		_, err := recurrence.ParseDate(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		_, err := time.Parse("15:04", s)
		return err == nil && len(s) == 5
	})
	v.RegisterValidation("hex6", func(fl validator.FieldLevel) bool {
		return hexColorRegexp.MatchString(fl.Field().String())
	})
	return v
}

// decode reads a JSON body into v and validates it.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON")
	}
	if err := validate.Struct(v); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return err
	}
	fe := ve[0]
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", fe.Field())
	case "ymd":
		return fmt.Errorf("%s must be a date (YYYY-MM-DD)", fe.Field())
	case "hhmm":
		return fmt.Errorf("%s must be a time (HH:MM)", fe.Field())
	case "hex6":
		return fmt.Errorf("%s must be a hex color (e.g. #FF0000)", fe.Field())
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Errorf("%s must be at most %s", fe.Field(), fe.Param())
	case "min":
		return fmt.Errorf("%s must be at least %s", fe.Field(), fe.Param())
	case "len":
		return fmt.Errorf("%s must be exactly %s characters", fe.Field(), fe.Param())
	}
	return fmt.Errorf("%s is invalid", fe.Field())
}

// dateRange reads ?start=&end= as dates. Missing values fall back to the
// defaults, where a zero date means unbounded; a reversed range is an error.
func dateRange(r *http.Request, defStart, defEnd recurrence.Date) (start, end recurrence.Date, err error) {
	start, end = defStart, defEnd
	if s := r.URL.Query().Get("start"); s != "" {
		if start, err = recurrence.ParseDate(s); err != nil {
			return start, end, errors.New("start must be a date (YYYY-MM-DD)")
		}
	}
	if s := r.URL.Query().Get("end"); s != "" {
		if end, err = recurrence.ParseDate(s); err != nil {
			return start, end, errors.New("end must be a date (YYYY-MM-DD)")
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return start, end, errors.New("end must not be before start")
	}
	return start, end, nil
}

func broadcast(hub *websocket.Hub, msg websocket.Message) {
	if hub != nil {
		hub.Broadcast(msg)
	}
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
