package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
)

// Sentinel errors for common HTTP error classes.
var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrNotFound       = errors.New("not found")
	ErrRestaurantFull = errors.New("restaurant full")
)

// CodeRestaurantFull is the error code the backend uses when no table is left
const CodeRestaurantFull = "RESTAURANTE_LLENO"

// APIError is a non-2xx response. Message is already the human-readable text
// a toast should show.
type APIError struct {
	Status       int
	Code         string
	Message      string
	Detail       string // raw "message" field, kept when Message came from elsewhere
	EstadoActual string

	generic bool
}

func (e *APIError) Error() string {
	return e.Message
}

// Is matches ErrRestaurantFull on the code or text alone, whatever the
// status, so a 403 or 404 saying "no hay mesas disponibles" still counts.
func (e *APIError) Is(target error) bool {
	return target == ErrRestaurantFull && e.restaurantFull()
}

// Unwrap maps the error onto the package sentinels so callers can use
// errors.Is without inspecting the status.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	}
	if e.restaurantFull() {
		return ErrRestaurantFull
	}
	return nil
}

func (e *APIError) restaurantFull() bool {
	if e.Code == CodeRestaurantFull {
		return true
	}
	msg := strings.ToLower(e.Message + " " + e.Detail)
	return strings.Contains(msg, "lleno") || strings.Contains(msg, "no hay mesas disponibles")
}

// IsRestaurantFull reports whether err says the restaurant has no free table
func IsRestaurantFull(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.restaurantFull()
	}
	return errors.Is(err, ErrRestaurantFull)
}

// errorBody covers every error shape the backend produces
type errorBody struct {
	Errores []struct {
		Campo   string `json:"campo"`
		Mensaje string `json:"mensaje"`
	} `json:"errores"`
	Error        string `json:"error"`
	Message      string `json:"message"`
	Code         string `json:"code"`
	EstadoActual string `json:"estadoActual"`
}

var codePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)

// parseError builds an APIError from a failed response body. Message
// precedence is errores[0].mensaje, then error, then message, then a generic
// status line. An error field that is a bare code (RESTAURANTE_LLENO) becomes
// Code and yields to message when one exists.
func parseError(status int, body []byte) *APIError {
	e := &APIError{Status: status}

	var b errorBody
	if len(body) > 0 && json.Unmarshal(body, &b) == nil {
		e.Code = b.Code
		e.Detail = b.Message
		e.EstadoActual = b.EstadoActual
		errText := b.Error
		if codePattern.MatchString(errText) {
			if e.Code == "" {
				e.Code = errText
			}
			if b.Message != "" {
				errText = ""
			}
		}
		switch {
		case len(b.Errores) > 0 && b.Errores[0].Mensaje != "":
			e.Message = b.Errores[0].Mensaje
		case errText != "":
			e.Message = errText
		case b.Message != "":
			e.Message = b.Message
		}
	}

	if e.Message == "" {
		e.Message = fmt.Sprintf("Error del servidor: %d", status)
		e.generic = true
	}
	return e
}

// softError reports a 2xx response whose envelope says success: false
func softError(env envelope, fallback string) *APIError {
	e := &APIError{Status: http.StatusOK, Message: env.Error, Detail: env.Message}
	if codePattern.MatchString(env.Error) {
		e.Code = env.Error
		e.Message = env.Message
	}
	if e.Message == "" {
		e.Message = env.Message
	}
	if e.Message == "" {
		e.Message = fallback
	}
	return e
}

// Message returns the backend's text for err. Transport failures and other
// non-API errors yield fallback.
func Message(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
