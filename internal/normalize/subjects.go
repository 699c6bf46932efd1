package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"BillSync/internal/domain"
)

// defaultOverrides fixes compound labels that arrive without any casing cue.
// Keys are the lower-cased output of the heuristic formatter.
var defaultOverrides = map[string]string{
	"lawenforcement":      "Law Enforcement",
	"publicsafety":        "Public Safety",
	"criminaljustice":     "Criminal Justice",
	"civilrights":         "Civil Rights",
	"publichealth":        "Public Health",
	"mentalhealth":        "Mental Health",
	"highereducation":     "Higher Education",
	"socialservices":      "Social Services",
	"naturalresources":    "Natural Resources",
	"economicdevelopment": "Economic Development",
	"humanservices":       "Human Services",
	"consumerprotection":  "Consumer Protection",
	"publicworks":         "Public Works",
	"localgovernment":     "Local Government",
}

var (
	lowerToUpper = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronymEnd   = regexp.MustCompile(`([A-Z])([A-Z][a-z])`)
)

// SubjectCanonicalizer turns raw machine labels into display names in two
// stages: a heuristic formatter followed by an override dictionary lookup.
type SubjectCanonicalizer struct {
	overrides map[string]string
}

// NewSubjectCanonicalizer builds a canonicalizer with the default overrides
// plus extra, whose entries win on conflict.
func NewSubjectCanonicalizer(extra map[string]string) *SubjectCanonicalizer {
	overrides := make(map[string]string, len(defaultOverrides)+len(extra))
	for k, v := range defaultOverrides {
		overrides[k] = v
	}
	for k, v := range extra {
		overrides[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &SubjectCanonicalizer{overrides: overrides}
}

var defaultCanonicalizer = NewSubjectCanonicalizer(nil)

// SubjectName canonicalizes label with the default override table.
func SubjectName(label string) string {
	return defaultCanonicalizer.Canonicalize(label)
}

// Canonicalize formats label and applies the override dictionary.
func (c *SubjectCanonicalizer) Canonicalize(label string) string {
	formatted := FormatLabel(label)
	if formatted == "" {
		return ""
	}
	if override, ok := c.overrides[strings.ToLower(formatted)]; ok {
		return override
	}
	return formatted
}

// FormatLabel is the heuristic stage: UPPER_SNAKE_CASE is split on underscores
// and title-cased, anything else is treated as camel or Pascal case.
func FormatLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}

	if isUpperSnake(label) {
		parts := strings.FieldsFunc(label, func(r rune) bool { return r == '_' || unicode.IsSpace(r) })
		for i, part := range parts {
			parts[i] = titleWord(part)
		}
		return strings.Join(parts, " ")
	}

	spaced := strings.ReplaceAll(label, "_", " ")
	spaced = lowerToUpper.ReplaceAllString(spaced, "$1 $2")
	spaced = acronymEnd.ReplaceAllString(spaced, "$1 $2")
	spaced = strings.Join(strings.Fields(spaced), " ")
	return upperFirst(spaced)
}

func isUpperSnake(label string) bool {
	hasLetter := false
	for _, r := range label {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			hasLetter = true
		}
	}
	return hasLetter
}

func titleWord(word string) string {
	lower := strings.ToLower(word)
	return upperFirst(lower)
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

type categoryRule struct {
	category domain.Category
	keywords []string
}

// categoryRules are checked in order; the first category with a matching
// keyword wins. A keyword matches a whole word or its plural; a trailing "*"
// makes it a stem that matches any word starting with it.
var categoryRules = []categoryRule{
	{domain.CategoryHealth, []string{"health*", "medical", "medicaid", "medicare", "hospital*", "disease*", "drug*", "pharma*", "mental"}},
	{domain.CategoryEducation, []string{"education*", "school*", "student*", "teach*", "college*", "universit*", "academ*"}},
	{domain.CategoryEnvironment, []string{"environment*", "climate", "energy", "water*", "conservation", "wildlife", "pollution", "natural", "agricult*"}},
	{domain.CategoryEconomy, []string{"econom*", "tax", "taxation", "budget*", "business*", "labor", "employ*", "financ*", "commerce", "trade", "housing"}},
	{domain.CategoryJustice, []string{"justice", "crime*", "criminal", "law", "court*", "police", "enforcement", "safety", "prison*", "firearm*"}},
	{domain.CategoryTransportation, []string{"transport*", "highway*", "road", "vehicle*", "traffic", "transit", "aviation", "rail*"}},
}

// Category maps a raw subject label to a coarse category. The label is split
// into words the same way display names are built, so keywords never match
// inside an unrelated word.
func Category(label string) domain.Category {
	words := strings.FieldsFunc(strings.ToLower(SubjectName(label)), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			for _, word := range words {
				if keywordMatches(kw, word) {
					return rule.category
				}
			}
		}
	}
	return domain.CategoryOther
}

func keywordMatches(kw, word string) bool {
	if stem, ok := strings.CutSuffix(kw, "*"); ok {
		return strings.HasPrefix(word, stem)
	}
	return word == kw || word == kw+"s" || word == kw+"es"
}
