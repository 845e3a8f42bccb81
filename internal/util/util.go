// Package util provides small shared helpers.
package util

import (
	"regexp"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
)

// uidMatcher matches the resource names generated with shortuuid plus the
// ones users may supply by hand (letters, digits, inner hyphens).
var uidMatcher = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9-]{0,30}[a-zA-Z0-9])?$`)

// GenUUID generates a full-length unique id string.
func GenUUID() string {
	return uuid.New().String()
}

// GenUID generates a short unique id suitable for resource names
// (folders, tabs, flashcards).
func GenUID() string {
	return shortuuid.New()
}

// ValidateUID reports whether the given uid is acceptable as a resource name.
func ValidateUID(uid string) bool {
	return uidMatcher.MatchString(uid)
}
