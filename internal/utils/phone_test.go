package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+2348012345678", "+2348012345678"},
		{"2348012345678", "+2348012345678"},
		{"08012345678", "+2348012345678"},
		{"0801 234 5678", "+2348012345678"},
		{"0801-234-5678", "+2348012345678"},
		{"+1 (415) 555-2671", "+14155552671"},
	}

	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		assert.NoError(t, err, "input: %s", tc.in)
		assert.Equal(t, tc.want, got, "input: %s", tc.in)
	}
}

func TestNormalizePhone_Invalid(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"8012345678",      // no country code, not a local format
		"0801234567",      // local format but wrong length
		"+234801234x678",  // letters
		"+123",            // too short
		"+1234567890123456", // too long
	} {
		_, err := NormalizePhone(in)
		assert.Error(t, err, "input: %q", in)
	}
}
