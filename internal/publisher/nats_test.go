package publisher

import "testing"

func TestSubjectToken(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"SUBWAY-WALK", "SUBWAY-WALK"},
		{"BUS", "BUS"},
		{"has space", "has_space"},
		{"dotted.token", "dotted_token"},
		{"wild*card", "wild_card"},
		{"full>match", "full_match"},
		{"a/b", "a_b"},
		{"  padded  ", "padded"},
		{"", "_"},
		{"   ", "_"},
	}
	for _, tc := range cases {
		if got := subjectToken(tc.in); got != tc.want {
			t.Errorf("subjectToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
