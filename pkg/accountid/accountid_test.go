package accountid

import "testing"

func TestValidate(t *testing.T) {
	cases := []struct {
		id    string
		valid bool
	}{
		{"alice.near", true},
		{"bob", true},
		{"a1", true},
		{"a", false},                 // too short
		{"", false},                  // too short
		{"Alice.near", false},        // uppercase
		{".alice", false},            // leading separator in segment
		{"alice.", false},            // trailing separator in segment
		{"ali__ce.near", false},      // consecutive separator
		{"ali--ce.near", false},      // consecutive separator
		{"ali_ce-near.near", true},   // single separators ok
		{"has space.near", false},    // invalid char
		{"has/slash.near", false},    // invalid char
		{"000000000000000000000000000000000000000000000000000000000000000000", false}, // 66 chars
	}
	for _, c := range cases {
		got := IsValid(c.id)
		if got != c.valid {
			t.Errorf("IsValid(%q) = %v, want %v", c.id, got, c.valid)
		}
	}
}
