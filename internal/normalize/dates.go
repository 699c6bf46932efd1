package normalize

import (
	"regexp"
	"strings"
	"time"
)

const calendarLayout = "2006-01-02"

var calendarPrefix = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})`)

// fallbackLayouts are tried in order when the input has no YYYY-MM-DD prefix.
var fallbackLayouts = []string{
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	"January 2, 2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"20060102",
}

// Date normalizes an optional date. A nil input stays nil.
func Date(value *string) *string {
	if value == nil {
		return nil
	}
	out := DateString(*value)
	return &out
}

// DateString returns the YYYY-MM-DD form of value, or value unchanged when it
// cannot be parsed.
func DateString(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return value
	}

	if m := calendarPrefix.FindStringSubmatch(trimmed); m != nil {
		return m[1]
	}

	for _, layout := range fallbackLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format(calendarLayout)
		}
	}

	return value
}
