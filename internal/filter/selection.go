package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Kind tells how a Selection resolves.
type Kind int

const (
	// KindDefault resolves to the process-wide default set.
	KindDefault Kind = iota
	// KindDisabled resolves to the empty set, which turns the check off.
	KindDisabled
	// KindExactly resolves to the listed values.
	KindExactly
)

// Selection chooses the set used by one filter option.
// The zero value is UseDefault().
type Selection struct {
	kind   Kind
	values []string
}

// UseDefault selects the process-wide default set.
func UseDefault() Selection {
	return Selection{kind: KindDefault}
}

// Disable selects the empty set.
func Disable() Selection {
	return Selection{kind: KindDisabled}
}

// Exactly selects the given values.
func Exactly(values ...string) Selection {
	return Selection{kind: KindExactly, values: append([]string(nil), values...)}
}

// Kind returns how the selection resolves.
func (s Selection) Kind() Kind {
	return s.kind
}

// Resolve returns the selected set. defaults is used for KindDefault and is copied.
func (s Selection) Resolve(defaults map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{})
	switch s.kind {
	case KindDefault:
		for v := range defaults {
			out[v] = struct{}{}
		}
	case KindExactly:
		for _, v := range s.values {
			out[v] = struct{}{}
		}
	}
	return out
}

// String renders the text form accepted by UnmarshalText.
func (s Selection) String() string {
	switch s.kind {
	case KindDisabled:
		return "none"
	case KindExactly:
		return strings.Join(s.values, ",")
	default:
		return "default"
	}
}

// UnmarshalText accepts "default", "none" or a comma-separated list.
// It is used for environment configuration.
func (s *Selection) UnmarshalText(text []byte) error {
	v := strings.TrimSpace(string(text))
	switch strings.ToLower(v) {
	case "", "default", "true":
		*s = UseDefault()
		return nil
	case "none", "false", "off":
		*s = Disable()
		return nil
	}
	var values []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	*s = Exactly(values...)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (s Selection) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalJSON accepts true (default set), false (disabled), a single string
// or an array of strings.
func (s *Selection) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = UseDefault()
		return nil
	}

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*s = UseDefault()
		} else {
			*s = Disable()
		}
		return nil
	}

	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = Exactly(one)
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("selection must be a bool, a string or an array of strings: %w", err)
	}
	*s = Exactly(many...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (s Selection) MarshalJSON() ([]byte, error) {
	switch s.kind {
	case KindDisabled:
		return []byte("false"), nil
	case KindExactly:
		values := append([]string{}, s.values...)
		sort.Strings(values)
		return json.Marshal(values)
	default:
		return []byte("true"), nil
	}
}
