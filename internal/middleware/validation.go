package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"inventory-api/internal/domain"

	"github.com/google/uuid"
)

// maxBodyBytes bounds request bodies accepted by DecodeJSON
const maxBodyBytes = 1 << 20

// DecodeJSON decodes a single JSON document from the request body
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("invalid request body: trailing data")
	}
	return nil
}

// ParseUUID parses an identifier taken from the URL
func ParseUUID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domain.NewValidationError(field, "must be a valid UUID")
	}
	return id, nil
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FormatValidationErrors converts a domain validation error to the response format
func FormatValidationErrors(err error) []ValidationError {
	var out []ValidationError

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		for _, f := range validationErr.Fields {
			out = append(out, ValidationError{
				Field:   f.Field,
				Message: f.Constraint,
			})
		}
	}

	return out
}
