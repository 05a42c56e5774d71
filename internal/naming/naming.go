// Package naming holds the display-name rules applied at player registration.
package naming

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"jerusalem-quest/internal/domain"
)

// MaxLength is the longest accepted display name, in characters.
const MaxLength = 15

// Hebrew block, ASCII letters, digits and whitespace, including Unicode space separators and
// the BOM.
var allowedName = regexp.MustCompile(`^[\x{0590}-\x{05FF}a-zA-Z0-9\s\v\p{Z}\x{FEFF}]+$`)

// Normalize trims name and checks it against the registration rules.
func Normalize(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", domain.NewValidationError("Name cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxLength {
		return "", domain.NewValidationError("Name must be " + strconv.Itoa(MaxLength) + " characters or less")
	}
	if !allowedName.MatchString(trimmed) {
		return "", domain.NewValidationError("Name can only contain Hebrew, English letters, numbers, and spaces")
	}
	if IsProfane(trimmed) {
		return "", domain.NewValidationError("This name is not allowed")
	}
	return trimmed, nil
}

// Unique returns name, or name followed by the smallest suffix >= 2 not present in taken.
func Unique(name string, taken []string) string {
	existing := make(map[string]struct{}, len(taken))
	for _, t := range taken {
		existing[t] = struct{}{}
	}
	if _, ok := existing[name]; !ok {
		return name
	}
	for n := 2; ; n++ {
		candidate := name + strconv.Itoa(n)
		if _, ok := existing[candidate]; !ok {
			return candidate
		}
	}
}
