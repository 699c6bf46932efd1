package normalize

import "testing"

func TestDateString(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{"2025-02-19T05:00:00+00:00", "2025-02-19"},
		{"2020-01-15", "2020-01-15"},
		{"  2021-03-04 10:00:00 ", "2021-03-04"},
		{"Mon, 02 Jan 2006 15:04:05 MST", "2006-01-02"},
		{"March 5, 2024", "2024-03-05"},
		{"03/05/2024", "2024-03-05"},
		{"not a date", "not a date"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := DateString(tc.in); got != tc.want {
			t.Fatalf("DateString(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestDateNil(t *testing.T) {
	t.Parallel()

	if got := Date(nil); got != nil {
		t.Fatalf("expected nil, got %q", *got)
	}

	in := "2025-02-19T05:00:00+00:00"
	got := Date(&in)
	if got == nil || *got != "2025-02-19" {
		t.Fatalf("unexpected date: %v", got)
	}
}
