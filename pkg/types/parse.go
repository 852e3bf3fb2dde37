package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// NewEntity returns an empty entity pointer for the table with its defaults
// applied. A new user is active unless the input says otherwise.
func NewEntity(table string) (any, error) {
	switch table {
	case UsersTable:
		return &User{IsActive: true}, nil
	case ProjectsTable:
		return &Project{}, nil
	case TasksTable:
		return &Task{}, nil
	case DocumentsTable:
		return &Document{}, nil
	case CommentsTable:
		return &Comment{}, nil
	default:
		return nil, ErrTableNotFound
	}
}

// NewPatch returns an empty patch pointer for the table.
func NewPatch(table string) (any, error) {
	switch table {
	case UsersTable:
		return &UserPatch{}, nil
	case ProjectsTable:
		return &ProjectPatch{}, nil
	case TasksTable:
		return &TaskPatch{}, nil
	case DocumentsTable:
		return &DocumentPatch{}, nil
	case CommentsTable:
		return &CommentPatch{}, nil
	default:
		return nil, ErrTableNotFound
	}
}

// ParseEntity decodes a JSON object into the table's entity type.
// Unknown fields are rejected with ErrUnknownField.
func ParseEntity(table string, data []byte) (any, error) {
	e, err := NewEntity(table)
	if err != nil {
		return nil, err
	}
	if err := decodeStrict(data, e); err != nil {
		return nil, err
	}
	return e, nil
}

// ParsePatch decodes a JSON object into the table's patch type.
// Unknown fields, including immutable ones such as created_by, are rejected
// with ErrUnknownField.
func ParsePatch(table string, data []byte) (any, error) {
	p, err := NewPatch(table)
	if err != nil {
		return nil, err
	}
	if err := decodeStrict(data, p); err != nil {
		return nil, err
	}
	return p, nil
}

// decodeStrict decodes exactly one JSON value into v, rejecting unknown
// fields and trailing data.
func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after JSON object", ErrValidation)
	}
	return nil
}

// decodeError maps encoding/json failures onto the package errors.
func decodeError(err error) error {
	if errors.Is(err, ErrValidation) {
		return err
	}
	if name, ok := strings.CutPrefix(err.Error(), "json: unknown field "); ok {
		return fmt.Errorf("%w %s", ErrUnknownField, name)
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("%w: field %s must be %s", ErrValidation, typeErr.Field, typeErr.Type)
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}
