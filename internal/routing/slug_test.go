// internal/routing/slug_test.go
//
// Run: go test ./internal/routing -v

package routing

import "testing"

func TestMakeSlug(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Contact Us", "contact-us"},
		{"  Quote — Request!  ", "quote-request"},
		{"Événement 2026", "v-nement-2026"},
		{"!!!", "form"},
		{"", "form"},
		{"already-kebab", "already-kebab"},
	}
	for _, tc := range cases {
		if got := MakeSlug(tc.in); got != tc.want {
			t.Errorf("MakeSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
