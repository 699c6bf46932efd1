package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// PlainText strips markup from an abstract and collapses whitespace.
func PlainText(value string) string {
	if !strings.ContainsAny(value, "<&") {
		return collapse(value)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
	if err != nil {
		return collapse(value)
	}
	return collapse(doc.Text())
}

// Slug strips all whitespace from a bill identifier ("HB 123" -> "HB123").
func Slug(identifier string) string {
	return strings.Join(strings.Fields(identifier), "")
}

// Chamber maps an organization classification to a display chamber.
func Chamber(classification string) string {
	switch strings.ToLower(strings.TrimSpace(classification)) {
	case "upper":
		return "Senate"
	case "lower":
		return "House"
	case "legislature":
		return "Legislature"
	default:
		return classification
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
