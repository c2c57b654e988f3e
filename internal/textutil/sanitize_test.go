package textutil_test

import (
	"testing"

	"v2s/internal/textutil"
)

func TestSafeSuffix(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"subs", "subs"},
		{"my subs!", "mysubs"},
		{"en-US_final", "en-US_final"},
		{"***", ""},
		{"čeština", "čeština"},
		{"a/b\\c", "abc"},
	}
	for _, tc := range cases {
		if got := textutil.SafeSuffix(tc.in); got != tc.want {
			t.Fatalf("SafeSuffix(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
