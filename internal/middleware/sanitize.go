package middleware

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cleberrangel/journey-goals-api/internal/model"
)

const (
	maxUserIDLength = 128
	maxTitleLength  = 255
)

var validUserID = regexp.MustCompile(`^[a-zA-Z0-9_.@-]+$`)

// SanitizeString removes null bytes and control characters, trims
// whitespace and truncates to maxLen runes (0 means no limit)
func SanitizeString(input string, maxLen int) string {
	input = strings.ReplaceAll(input, "\x00", "")
	input = removeControlChars(input)
	input = strings.TrimSpace(input)

	if maxLen > 0 {
		if runes := []rune(input); len(runes) > maxLen {
			input = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return input
}

// SanitizeUserID cleans the X-User-ID header value
func SanitizeUserID(userID string) string {
	return SanitizeString(userID, maxUserIDLength)
}

// ValidateUserID accepts letters, digits and _ . @ -
func ValidateUserID(userID string) bool {
	return userID != "" && validUserID.MatchString(userID)
}

// SanitizeTitle strips control characters from a goal title or task name,
// trims it and caps it at maxTitleLength runes. HTML is kept as is.
func SanitizeTitle(title string) string {
	return SanitizeString(title, maxTitleLength)
}

// SanitizeGoals cleans titles and task names in place
func SanitizeGoals(goals []model.Goal) {
	for i := range goals {
		goals[i].Title = SanitizeTitle(goals[i].Title)
		for j := range goals[i].Tasks {
			goals[i].Tasks[j].Name = SanitizeTitle(goals[i].Tasks[j].Name)
		}
	}
}

// removeControlChars removes control characters from a string
func removeControlChars(s string) string {
	var result strings.Builder
	for _, r := range s {
		if !unicode.IsControl(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}
