// Package payload turns loosely typed request bodies (multipart forms carry
// every value as a string) into typed DTOs through an ordered list of steps.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrMalformedField is returned when a field declared as JSON does not parse.
var ErrMalformedField = errors.New("malformed field")

// FieldError names the field that failed a normalization step.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() []error {
	return []error{ErrMalformedField, e.Err}
}

// Payload is a raw request body keyed by field name.
type Payload map[string]any

// Step transforms a payload. Steps never mutate their input.
type Step func(Payload) (Payload, error)

// Pipeline applies its steps in order and stops at the first error.
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

func (p *Pipeline) Run(in Payload) (Payload, error) {
	out := in
	for _, step := range p.steps {
		var err error
		out, err = step(out)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ParseJSONFields decodes string values of the named fields as JSON.
// Non-string values pass through.
func ParseJSONFields(fields ...string) Step {
	return func(in Payload) (Payload, error) {
		out := in.clone()
		for _, f := range fields {
			raw, ok := out[f].(string)
			if !ok {
				continue
			}
			var v any
			if err := json.Unmarshal([]byte(raw), &v); err != nil {
				return nil, &FieldError{Field: f, Err: err}
			}
			out[f] = v
		}
		return out, nil
	}
}

// ParseBoolFields converts the literal strings "true" and "false".
// Anything else is left for typed decoding to reject.
func ParseBoolFields(fields ...string) Step {
	return func(in Payload) (Payload, error) {
		out := in.clone()
		for _, f := range fields {
			switch out[f] {
			case "true":
				out[f] = true
			case "false":
				out[f] = false
			}
		}
		return out, nil
	}
}

// ParseIntFields converts base-10 integer strings. Anything else is left untouched.
func ParseIntFields(fields ...string) Step {
	return func(in Payload) (Payload, error) {
		out := in.clone()
		for _, f := range fields {
			raw, ok := out[f].(string)
			if !ok {
				continue
			}
			if n, err := strconv.Atoi(raw); err == nil {
				out[f] = n
			}
		}
		return out, nil
	}
}

// Decode maps the payload onto dst. Unknown fields and type mismatches are errors.
func Decode(in Payload, dst any) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (p Payload) clone() Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
