package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Snapshot returns the collection encoded as a JSON array.
func (s *Store[T]) Snapshot() (json.RawMessage, error) {
	raw, err := json.Marshal(s.List())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", s.opts.name, err)
	}
	return raw, nil
}

// Stage decodes and validates a JSON array of records without touching the
// store. The returned commit replaces the collection with the staged records.
//
// Records missing an id get a fresh one, Defaulted records get their defaults
// applied, and `validate` struct tags are enforced. Duplicate ids are rejected.
func (s *Store[T]) Stage(raw json.RawMessage) (func() error, error) {
	items, err := s.decode(raw)
	if err != nil {
		return nil, err
	}
	return func() error { return s.ReplaceAll(items) }, nil
}

func (s *Store[T]) decode(raw json.RawMessage) ([]T, error) {
	name := s.opts.name
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, Validation(name, "expected an array of records")
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, Validation(name, "invalid array: %v", err)
	}

	items := make([]T, 0, len(elems))
	seen := make(map[string]int, len(elems))
	for i, elem := range elems {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			return nil, Validation(name, "record %d: %v", i, err)
		}
		if d, ok := any(v).(Defaulted[T]); ok {
			v = d.WithDefaults()
		}
		if v.GetID() == "" {
			v = v.WithID(s.opts.newID())
		}
		if prev, dup := seen[v.GetID()]; dup {
			return nil, Validation(name, "record %d: duplicate id %q (also record %d)", i, v.GetID(), prev)
		}
		seen[v.GetID()] = i
		if err := validateRecord(v); err != nil {
			return nil, Validation(name, "record %d (%s): %v", i, v.GetID(), err)
		}
		items = append(items, v)
	}
	return items, nil
}

func validateRecord(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		// Non-struct records carry no tags to check.
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		msgs := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
		return errors.New(strings.Join(msgs, ", "))
	}
	return err
}

// Validate checks a single record's struct tags.
func Validate(v any) error {
	if err := validateRecord(v); err != nil {
		return Validation("", "%v", err)
	}
	return nil
}
