package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

type UniversityType string

const (
	UniversityPublic  UniversityType = "public"
	UniversityPrivate UniversityType = "private"
)

// ParseUniversityType accepts the API values and the labels found in fixtures
// ("Public", "Privée"). An empty value means public.
func ParseUniversityType(s string) (UniversityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "public", "publique":
		return UniversityPublic, nil
	case "private", "privée", "privee":
		return UniversityPrivate, nil
	default:
		return "", fmt.Errorf("%w: unknown university type %q", ErrValidation, s)
	}
}

// UnmarshalJSON normalizes request values through ParseUniversityType. null
// leaves the current value untouched.
func (t *UniversityType) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: university type must be a string", ErrValidation)
	}
	parsed, err := ParseUniversityType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
