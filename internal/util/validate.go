package util

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"go-vidtube/pkg/apierror"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Field is a named request value checked by RequireFields.
type Field struct {
	Name  string
	Value string
}

// RequireFields fails with BadRequest listing every field that is empty
// after trimming.
func RequireFields(fields ...Field) error {
	var missing []string
	for _, field := range fields {
		if strings.TrimSpace(field.Value) == "" {
			missing = append(missing, field.Name+" is required")
		}
	}

	if len(missing) > 0 {
		return apierror.BadRequest("All fields are required", missing...)
	}

	return nil
}

func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidateEmail(email string) error {
	if !IsValidEmail(strings.TrimSpace(email)) {
		return apierror.BadRequest("Not a valid email", "email")
	}
	return nil
}

// ParseID returns the canonical form of a record identifier or a BadRequest
// naming the offending parameter.
func ParseID(raw string, name string) (string, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", apierror.BadRequest(name+" is not valid", name)
	}
	return parsed.String(), nil
}

func IsValidID(raw string) bool {
	_, err := uuid.Parse(strings.TrimSpace(raw))
	return err == nil
}
