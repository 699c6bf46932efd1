package normalize

import "testing"

func TestPlainText(t *testing.T) {
	t.Parallel()

	in := "<p>This bill <b>amends</b>\n the   code.</p>"
	if got := PlainText(in); got != "This bill amends the code." {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := PlainText("  plain   abstract "); got != "plain abstract" {
		t.Fatalf("unexpected text: %q", got)
	}
	if got := PlainText("Fish &amp; Game"); got != "Fish & Game" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestSlug(t *testing.T) {
	t.Parallel()

	if got := Slug("HB 123"); got != "HB123" {
		t.Fatalf("unexpected slug: %q", got)
	}
	if got := Slug(" SB\t 7 A "); got != "SB7A" {
		t.Fatalf("unexpected slug: %q", got)
	}
}

func TestChamber(t *testing.T) {
	t.Parallel()

	cases := map[string]string{"upper": "Senate", "lower": "House", "legislature": "Legislature", "executive": "executive"}
	for in, want := range cases {
		if got := Chamber(in); got != want {
			t.Fatalf("Chamber(%q) = %q, want %q", in, got, want)
		}
	}
}
