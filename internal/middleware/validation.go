package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"unicode/utf8"
)

// Field length limits, matching what the client enforces.
const (
	MinTitleLength   = 1
	MaxTitleLength   = 20
	MinContentLength = 10
	MaxContentLength = 300
)

// emailPattern is a pragmatic email syntax check, not a full RFC 5322
// parser.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// FieldRule is a static structural rule for one JSON body field.
// Lengths are measured in runes.
type FieldRule struct {
	Name     string
	Required bool
	MinLen   int
	MaxLen   int
	Email    bool
}

// Schema is the set of rules applied to a request body before its
// handler runs. Validation is purely structural: business rules such
// as uniqueness or password match stay in the handler.
type Schema struct {
	Fields []FieldRule
}

// Request body schemas for the API routes.
var (
	RegisterSchema = Schema{Fields: []FieldRule{
		{Name: "fullName", Required: true, MinLen: 1},
		{Name: "email", Required: true, Email: true},
		{Name: "password", Required: true, MinLen: 1},
		{Name: "passwordRepeat", Required: true, MinLen: 1},
	}}

	LoginSchema = Schema{Fields: []FieldRule{
		{Name: "email", Required: true, MinLen: 1},
		{Name: "password", Required: true, MinLen: 1},
	}}

	AddEntrySchema = Schema{Fields: []FieldRule{
		{Name: "title", Required: true, MinLen: MinTitleLength, MaxLen: MaxTitleLength},
		{Name: "content", Required: true, MinLen: MinContentLength, MaxLen: MaxContentLength},
	}}
)

// validationError is the 400 body for a failed validation.
type validationError struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// ValidateBody returns a middleware that checks the JSON body against
// the schema. On violation it responds 400 naming the failing fields
// and the handler never runs. On success the body is restored so the
// handler can decode it normally.
func ValidateBody(schema Schema) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(r.Body)
			if err != nil {
				writeValidationError(w, "Could not read request body.", nil)
				return
			}
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))

			var parsed map[string]any
			if err := json.Unmarshal(body, &parsed); err != nil {
				writeValidationError(w, "Request body must be valid JSON.", nil)
				return
			}

			fields := schema.Check(parsed)
			if len(fields) > 0 {
				writeValidationError(w, "Invalid request body.", fields)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Check evaluates the schema against a decoded body and returns a map
// of field name to violation message. An empty map means the body is
// structurally valid.
func (s Schema) Check(body map[string]any) map[string]string {
	fields := make(map[string]string)

	for _, rule := range s.Fields {
		raw, present := body[rule.Name]
		if !present || raw == nil {
			if rule.Required {
				fields[rule.Name] = "is required"
			}
			continue
		}

		value, ok := raw.(string)
		if !ok {
			fields[rule.Name] = "must be a string"
			continue
		}

		length := utf8.RuneCountInString(value)
		switch {
		case rule.Required && length == 0:
			fields[rule.Name] = "is required"
		case rule.MinLen > 0 && length < rule.MinLen:
			fields[rule.Name] = fmt.Sprintf("must be at least %d characters", rule.MinLen)
		case rule.MaxLen > 0 && length > rule.MaxLen:
			fields[rule.Name] = fmt.Sprintf("must be at most %d characters", rule.MaxLen)
		case rule.Email && !emailPattern.MatchString(value):
			fields[rule.Name] = "must be a valid email address"
		}
	}

	return fields
}

func writeValidationError(w http.ResponseWriter, message string, fields map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(validationError{Error: message, Fields: fields})
}
