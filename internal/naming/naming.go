package naming

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const maxFieldLength = 200

var (
	hostileChars      = regexp.MustCompile(`[<>:"/\\|?*']`)
	whitespaceRuns    = regexp.MustCompile(`\s+`)
	underscoreRuns    = regexp.MustCompile(`_+`)
	titleCaser        = cases.Title(language.English)
	acceptedDateForms = []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
		"01/02/2006",
		"January 2, 2006",
	}
)

// GenerateFileName derives the canonical, filesystem-safe output name for an
// archived interview recording: {name}_{company}_{type}_{date}{ext}.
//
// Pure function: identical inputs always produce byte-identical output.
func GenerateFileName(candidateName, company, interviewType, interviewDate, extension string) string {
	if strings.TrimSpace(extension) == "" {
		extension = ".mp4"
	}
	parts := []string{
		Sanitize(candidateName),
		Sanitize(company),
		Sanitize(interviewType),
		NormalizeDate(interviewDate),
	}
	// Empty fields would otherwise leave doubled separators.
	stem := underscoreRuns.ReplaceAllString(strings.Join(parts, "_"), "_")
	return strings.Trim(stem, "_") + extension
}

// Sanitize strips path-hostile characters and apostrophes, maps "&" to "and",
// collapses whitespace and underscore runs to single underscores, and
// truncates the result to 200 characters.
func Sanitize(value string) string {
	value = strings.ReplaceAll(value, "&", "and")
	value = hostileChars.ReplaceAllString(value, "")
	value = whitespaceRuns.ReplaceAllString(strings.TrimSpace(value), "_")
	value = underscoreRuns.ReplaceAllString(value, "_")
	value = strings.Trim(value, "_")
	if utf8.RuneCountInString(value) > maxFieldLength {
		runes := []rune(value)
		value = string(runes[:maxFieldLength])
	}
	return value
}

// NormalizeDate reduces a date or date-time string to YYYY-MM-DD. Inputs that
// fit no known layout are sanitized and passed through so the caller still
// gets a deterministic, filesystem-safe name.
func NormalizeDate(value string) string {
	trimmed := strings.TrimSpace(value)
	for _, layout := range acceptedDateForms {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts.Format("2006-01-02")
		}
	}
	// Date-time strings with offsets but fractional seconds, etc.
	if ts, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return ts.Format("2006-01-02")
	}
	return Sanitize(trimmed)
}

// DisplayTitle renders a free-text field for presentation surfaces
// (notifications, CLI tables) with English title casing.
func DisplayTitle(value string) string {
	return titleCaser.String(strings.TrimSpace(value))
}
