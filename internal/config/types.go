package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
)

// DonePolicy specifies what to do with items marked as done.
type DonePolicy string

const (
	// PolicyMark marks items as done if they were in the file already, otherwise skips them.
	PolicyMark DonePolicy = "mark"
	// PolicyAdd always adds done items.
	PolicyAdd DonePolicy = "add"
	// PolicyIgnore never keeps done items, including ones already in the file.
	PolicyIgnore DonePolicy = "ignore"
)

// Valid reports whether p is one of the known policies.
func (p DonePolicy) Valid() bool {
	switch p {
	case PolicyMark, PolicyAdd, PolicyIgnore:
		return true
	}
	return false
}

func (p *DonePolicy) UnmarshalText(b []byte) error {
	v := DonePolicy(b)
	if v == "" {
		v = PolicyMark
	}
	if !v.Valid() {
		return fmt.Errorf("unknown done policy %q (want mark, add or ignore)", string(b))
	}
	*p = v
	return nil
}

const redacted = "**REDACTED**"

// Secret holds a credential. Every textual rendering is a redaction marker;
// the value is only available through Expose.
type Secret struct {
	value string
}

func NewSecret(s string) Secret { return Secret{value: s} }

// Expose returns the real value. Only use it to authenticate a request.
func (s Secret) Expose() string { return s.value }

func (s Secret) IsZero() bool { return s.value == "" }

func (s Secret) String() string { return redacted }

func (s Secret) GoString() string { return "config.Secret(" + redacted + ")" }

func (s Secret) LogValue() slog.Value { return slog.StringValue(redacted) }

func (s Secret) MarshalJSON() ([]byte, error) { return json.Marshal(redacted) }

func (s Secret) MarshalYAML() (interface{}, error) { return redacted, nil }

func (s *Secret) UnmarshalText(b []byte) error {
	s.value = string(b)
	return nil
}
