package normalize

import (
	"regexp"
	"strings"
)

var statePattern = regexp.MustCompile(`(?i)/state:([a-z]{2})(?:/|$)`)

// StateAbbreviation extracts the upper-cased two-letter code from a structured
// identifier such as "ocd-jurisdiction/country:us/state:ca/government".
func StateAbbreviation(id string) (string, bool) {
	m := statePattern.FindStringSubmatch(id)
	if m == nil {
		return "", false
	}
	return strings.ToUpper(m[1]), true
}

// LegislatureType names the chamber structure. It is empty when no chamber
// is known.
func LegislatureType(chambers int) string {
	switch {
	case chambers <= 0:
		return ""
	case chambers == 1:
		return "Unicameral"
	default:
		return "Bicameral"
	}
}
