package form

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the format of date inputs.
const DateLayout = "2006-01-02"

func str(v url.Values, name string) string {
	return strings.TrimSpace(v.Get(name))
}

// optInt parses an optional integer field; an empty value yields nil.
func optInt(v url.Values, name string, errs Errors) *int {
	s := str(v, name)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		errs.Add(name, MsgInteger)
		return nil
	}
	return &n
}

// reqInt parses a required integer field.
func reqInt(v url.Values, name string, errs Errors) int {
	s := str(v, name)
	if s == "" {
		errs.Add(name, MsgRequired)
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		errs.Add(name, MsgInteger)
		return 0
	}
	return n
}

// optID parses an optional foreign key.  Anything that is not a positive
// integer is an invalid choice.
func optID(v url.Values, name string, errs Errors) *uint64 {
	s := str(v, name)
	if s == "" {
		return nil
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		errs.Add(name, MsgInvalidChoice)
		return nil
	}
	return &id
}

// ids parses a multi-select field, dropping empty entries and duplicates.
func ids(v url.Values, name string, errs Errors) []uint64 {
	var out []uint64
	seen := map[uint64]bool{}
	for _, raw := range v[name] {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil || id == 0 {
			errs.Add(name, MsgInvalidChoice)
			return nil
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// optDate parses an optional YYYY-MM-DD field.
func optDate(v url.Values, name string, errs Errors) *time.Time {
	s := str(v, name)
	if s == "" {
		return nil
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		errs.Add(name, MsgDate)
		return nil
	}
	return &t
}

// parseBool interprets checkbox values.  Browsers send "on".
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "1", "true", "yes":
		return true
	}
	return false
}

// Checked reports whether the checkbox field was ticked in v.
func Checked(v url.Values, field string) bool { return parseBool(v.Get(field)) }
