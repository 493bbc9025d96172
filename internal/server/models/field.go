package models

import (
	"bytes"
	"encoding/json"
)

type fieldState uint8

const (
	fieldUnset fieldState = iota
	fieldClear
	fieldSet
)

// Field is one entry of a partial update. The zero value leaves the target
// untouched; Clear asks for the target to be unset; Set replaces it.
type Field[T any] struct {
	state fieldState
	value T
}

// Set returns a field that replaces the target with v.
func Set[T any](v T) Field[T] {
	return Field[T]{state: fieldSet, value: v}
}

// Clear returns a field that unsets the target.
func Clear[T any]() Field[T] {
	return Field[T]{state: fieldClear}
}

// Present reports whether the field was mentioned in the request.
func (f Field[T]) Present() bool { return f.state != fieldUnset }

// IsClear reports whether the field asks for the target to be unset.
func (f Field[T]) IsClear() bool { return f.state == fieldClear }

// Get returns the value and whether the field carries one.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.state == fieldSet
}

// UnmarshalJSON is only invoked for keys present in the payload, so an absent
// key stays unset. A JSON null clears the field.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = Clear[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Set(v)
	return nil
}

// CheckerUpdate is a partial update of a checker. Only present fields are
// applied.
type CheckerUpdate struct {
	UUID        Field[string]              `json:"uuid"`
	Name        Field[string]              `json:"name"`
	Description Field[string]              `json:"description"`
	URL         Field[string]              `json:"url"`
	Repository  Field[string]              `json:"repository"`
	Status      Field[CheckerStatus]       `json:"status"`
	Blocking    Field[[]BlockingCondition] `json:"blocking"`
	Query       Field[string]              `json:"query"`
}

// CheckerCreate is the input of the initial write of a checker. An empty
// UUID asks the server to generate one; an empty Status means ENABLED.
type CheckerCreate struct {
	UUID        string              `json:"uuid"`
	Name        string              `json:"name"`
	Description string              `json:"description"`
	URL         string              `json:"url"`
	Repository  string              `json:"repository"`
	Status      CheckerStatus       `json:"status"`
	Blocking    []BlockingCondition `json:"blocking"`
	Query       string              `json:"query"`
}
