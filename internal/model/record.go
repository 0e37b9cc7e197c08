package model

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Date is a calendar date as written in todo.txt (YYYY-MM-DD).
// Only numeric ranges are checked, not real calendar rules.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	parts := strings.SplitN(s, "-", 3)
	if len(parts) != 3 {
		return Date{}, &FormatError{Input: s, Msg: "invalid date format"}
	}
	bounds := [3][2]int{{0, 9999}, {1, 12}, {1, 31}}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil || int(n) < bounds[i][0] || int(n) > bounds[i][1] {
			return Date{}, &FormatError{Input: s, Msg: "invalid date format"}
		}
		vals[i] = int(n)
	}
	return Date{Year: vals[0], Month: vals[1], Day: vals[2]}, nil
}

// String renders the date zero-padded, e.g. "2024-01-05".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Record is a single todo.txt line.
type Record struct {
	Done bool
	// Priority is an uppercase letter, or 0 when unset.
	Priority  rune
	Created   *Date
	Completed *Date
	// Description is free text with embedded +project, @context and key:value tags.
	Description string
}

// New builds a Record, rejecting a completion date without a creation date.
func New(done bool, priority rune, created, completed *Date, description string) (Record, error) {
	if completed != nil && created == nil {
		return Record{}, &FormatError{Input: description, Msg: "completion date without creation date"}
	}
	if priority != 0 && (priority < 'A' || priority > 'Z') {
		return Record{}, &FormatError{Input: string(priority), Msg: "priority must be an uppercase letter"}
	}
	return Record{
		Done:        done,
		Priority:    priority,
		Created:     copyDate(created),
		Completed:   copyDate(completed),
		Description: description,
	}, nil
}

// Equal reports whether both records have the same fields, comparing dates by value.
func (r Record) Equal(o Record) bool {
	return r.Done == o.Done &&
		r.Priority == o.Priority &&
		sameDate(r.Created, o.Created) &&
		sameDate(r.Completed, o.Completed) &&
		r.Description == o.Description
}

// Clone returns a copy that shares no memory with r.
func (r Record) Clone() Record {
	r.Created = copyDate(r.Created)
	r.Completed = copyDate(r.Completed)
	return r
}

// Append adds a tag to the end of the description. Existing text is never rewritten.
func (r *Record) Append(tag Tag) {
	switch {
	case r.Description == "":
		r.Description = tag.String()
	case strings.TrimRightFunc(r.Description, unicode.IsSpace) != r.Description:
		r.Description += tag.String()
	default:
		r.Description += " " + tag.String()
	}
}

func sameDate(a, b *Date) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func copyDate(d *Date) *Date {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
