package form

import (
	"context"
	"net/url"
	"strconv"
)

// NonFieldKey holds errors that do not belong to a single field.
const NonFieldKey = "__all__"

// Errors maps a form field name to its message.
type Errors map[string]string

// Add records msg for field unless the field already has a message.
func (e Errors) Add(field, msg string) {
	if _, ok := e[field]; !ok {
		e[field] = msg
	}
}

// Has reports whether field has a message.
func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// Get returns the message of field or "".
func (e Errors) Get(field string) string { return e[field] }

// Valid reports whether no message was recorded.
func (e Errors) Valid() bool { return len(e) == 0 }

// ExistsFunc reports whether the row with id exists.  Repository Exists
// methods satisfy it.
type ExistsFunc func(ctx context.Context, id uint64) (bool, error)

// CheckRef verifies that a referenced row exists and records
// MsgInvalidChoice otherwise.  A nil id is not checked.
func (e Errors) CheckRef(ctx context.Context, field string, id *uint64, exists ExistsFunc) error {
	if id == nil || e.Has(field) {
		return nil
	}
	ok, err := exists(ctx, *id)
	if err != nil {
		return err
	}
	if !ok {
		e.Add(field, MsgInvalidChoice)
	}
	return nil
}

// CountFunc returns how many of ids exist.
type CountFunc func(ctx context.Context, ids []uint64) (int, error)

// CheckRefs verifies a multi-select field.  ids must be free of duplicates.
func (e Errors) CheckRefs(ctx context.Context, field string, ids []uint64, count CountFunc) error {
	if len(ids) == 0 || e.Has(field) {
		return nil
	}
	n, err := count(ctx, ids)
	if err != nil {
		return err
	}
	if n != len(ids) {
		e.Add(field, MsgInvalidChoice)
	}
	return nil
}

// Form is what templates receive: the submitted values, to redisplay
// them unchanged, and the field errors.
type Form struct {
	Values url.Values
	Errors Errors
}

// New wraps values and errors for rendering.  Both may be nil.
func New(values url.Values, errs Errors) *Form {
	if values == nil {
		values = url.Values{}
	}
	if errs == nil {
		errs = Errors{}
	}
	return &Form{Values: values, Errors: errs}
}

// Value returns the first submitted value of field.
func (f *Form) Value(field string) string { return f.Values.Get(field) }

// Error returns the message attached to field.
func (f *Form) Error(field string) string { return f.Errors.Get(field) }

// Checked reports whether a checkbox field was ticked.
func (f *Form) Checked(field string) bool { return parseBool(f.Values.Get(field)) }

// Selected reports whether id is among the submitted values of field.
func (f *Form) Selected(field string, id uint64) bool {
	s := strconv.FormatUint(id, 10)
	for _, v := range f.Values[field] {
		if v == s {
			return true
		}
	}
	return false
}
