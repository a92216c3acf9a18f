package exam

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOption(t *testing.T) {
	opts := Options{
		A: "Paris",
		B: "London",
		C: "Berlin",
		D: "Madrid",
	}

	tests := []struct {
		name string
		raw  string
		opts Options
		want string
	}{
		{"empty answer", "", opts, ""},
		{"letter passthrough upper", "B", opts, "B"},
		{"letter passthrough lower with spaces", "  c ", opts, "C"},
		{"verbatim option text", "London", opts, "B"},
		{"case and whitespace insensitive", "  LON DON ", opts, "B"},
		{"latex markers stripped", "$Berlin$", opts, "C"},
		{"no match returns raw", "Rome", opts, "Rome"},
		{"letter E is not an option", "E", opts, "E"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveOption(tt.raw, tt.opts))
		})
	}
}

func TestResolveOptionContainment(t *testing.T) {
	opts := Options{
		A: "The Paris Accord",
		B: "The London Treaty",
		C: "x",
		D: "",
	}

	// "paris" is contained in option A: 5/14 is below the threshold, so
	// the raw value comes back unchanged.
	assert.Equal(t, "paris", ResolveOption("paris", opts))

	// A longer fragment clears the threshold.
	assert.Equal(t, "A", ResolveOption("Paris Accord", opts))
	assert.Equal(t, "B", ResolveOption("London Treaty", opts))
}

func TestResolveOptionTieBreaksInLetterOrder(t *testing.T) {
	// Both options normalize to the same length and contain the answer;
	// the first letter in A..D order wins.
	opts := Options{
		A: "paris one",
		B: "paris two",
	}
	assert.Equal(t, "A", ResolveOption("paris", opts))
}

func TestNormalizeAnswer(t *testing.T) {
	assert.Equal(t, "x+y=z", normalizeAnswer("$x + y = z$"))
	assert.Equal(t, "abc", normalizeAnswer("  A\tB\nC  "))
	assert.Equal(t, "", normalizeAnswer(" $ $ "))
}

func TestIsOptionLetter(t *testing.T) {
	assert.True(t, IsOptionLetter("A"))
	assert.True(t, IsOptionLetter("D"))
	assert.False(t, IsOptionLetter("a"))
	assert.False(t, IsOptionLetter("E"))
	assert.False(t, IsOptionLetter(""))
	assert.False(t, IsOptionLetter("Paris"))
}
