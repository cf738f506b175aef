package retrieve

import "testing"

func TestNormalizeProfileURL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"linkedin.com/in/jane", "https://www.linkedin.com/in/jane/"},
		{"http://LinkedIn.com/in/jane/", "https://www.linkedin.com/in/jane/"},
		{"https://uk.linkedin.com/in/jane?trk=x#about", "https://www.linkedin.com/in/jane/"},
		{"www.linkedin.com/in/jane/", "https://www.linkedin.com/in/jane/"},
		{"example.org/people/jane", "https://example.org/people/jane/"},
	}
	for _, tc := range cases {
		got, err := NormalizeProfileURL(tc.in)
		if err != nil {
			t.Fatalf("NormalizeProfileURL(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("NormalizeProfileURL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeProfileURLRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "not a url", "https://"} {
		if _, err := NormalizeProfileURL(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
}

func TestEmailDomain(t *testing.T) {
	if got := EmailDomain("Jane@X.COM"); got != "x.com" {
		t.Fatalf("unexpected domain %q", got)
	}
	if got := EmailDomain("jane@"); got != "" {
		t.Fatalf("expected empty domain, got %q", got)
	}
}

func TestTruncateKeepsRunes(t *testing.T) {
	if got := truncate("héllo", 2); got != "hé" {
		t.Fatalf("unexpected truncation %q", got)
	}
}
