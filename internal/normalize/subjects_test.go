package normalize

import (
	"testing"

	"BillSync/internal/domain"
)

func TestSubjectName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"PUBLIC_SAFETY", "Public Safety"},
		{"HEALTH", "Health"},
		{"Lawenforcement", "Law Enforcement"},
		{"lawenforcement", "Law Enforcement"},
		{"CRIMINALJUSTICE", "Criminal Justice"},
		{"HealthCare", "Health Care"},
		{"taxReform", "Tax Reform"},
		{"HIVPrevention", "HIV Prevention"},
		{"Agriculturalpolicy", "Agriculturalpolicy"},
		{"  ", ""},
	}

	for _, tc := range cases {
		if got := SubjectName(tc.in); got != tc.want {
			t.Fatalf("SubjectName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSubjectNameSameDisplayName(t *testing.T) {
	t.Parallel()

	a := SubjectName("PUBLIC_SAFETY")
	b := SubjectName("PublicSafety")
	c := SubjectName("Publicsafety")
	if a != b || b != c {
		t.Fatalf("expected one display name, got %q %q %q", a, b, c)
	}
}

func TestCanonicalizerExtraOverrides(t *testing.T) {
	t.Parallel()

	c := NewSubjectCanonicalizer(map[string]string{"Agriculturalpolicy": "Agricultural Policy"})
	if got := c.Canonicalize("Agriculturalpolicy"); got != "Agricultural Policy" {
		t.Fatalf("unexpected override result: %q", got)
	}
	if got := c.Canonicalize("Lawenforcement"); got != "Law Enforcement" {
		t.Fatalf("default overrides lost: %q", got)
	}
}

func TestCategoryIgnoresKeywordsInsideWords(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"BROADBAND", "INTERGOVERNMENTAL_COLLABORATION", "LAWN_CARE", "Trademarks", "ROADRUNNER_PRESERVE"} {
		if got := Category(in); got != domain.CategoryOther {
			t.Fatalf("Category(%q) = %q, want %q", in, got, domain.CategoryOther)
		}
	}
}

func TestCategory(t *testing.T) {
	t.Parallel()

	cases := map[string]domain.Category{
		"PUBLIC_HEALTH":        domain.CategoryHealth,
		"HigherEducation":      domain.CategoryEducation,
		"CLIMATE_CHANGE":       domain.CategoryEnvironment,
		"TAXATION":             domain.CategoryEconomy,
		"Lawenforcement":       domain.CategoryJustice,
		"HIGHWAYS":             domain.CategoryTransportation,
		"ARTS_AND_CULTURE":     domain.CategoryOther,
		"SCHOOL_HEALTH_CLINIC": domain.CategoryHealth,
		"MENTAL_HEALTH":        domain.CategoryHealth,
		"PUBLIC_SAFETY":        domain.CategoryJustice,
		"FAMILY_LAW":           domain.CategoryJustice,
		"RAILROADS":            domain.CategoryTransportation,
		"PropertyTaxes":        domain.CategoryEconomy,
	}

	for in, want := range cases {
		if got := Category(in); got != want {
			t.Fatalf("Category(%q) = %q, want %q", in, got, want)
		}
	}
}
