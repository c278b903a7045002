package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRunNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{name: "single digit", input: "t_1.csv", want: 1, ok: true},
		{name: "two digits", input: "t_42.csv", want: 42, ok: true},
		{name: "three digits", input: "t_999.csv", want: 999, ok: true},
		{name: "leading zeros", input: "t_007.csv", want: 7, ok: true},
		{name: "zero", input: "t_0.csv", want: 0, ok: true},
		{name: "four digits", input: "t_1000.csv", ok: false},
		{name: "no digits", input: "t_.csv", ok: false},
		{name: "non-digit in span", input: "t_1a.csv", ok: false},
		{name: "wrong prefix", input: "x_1.csv", ok: false},
		{name: "missing underscore", input: "t1.csv", ok: false},
		{name: "wrong suffix", input: "t_1.txt", ok: false},
		{name: "uppercase suffix", input: "t_1.CSV", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "just prefix and suffix", input: "t_csv", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRunNumber(tt.input)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestNext_SequentialWithoutRescan(t *testing.T) {
	c := New([]string{"t_3.csv", "t_17.csv", "notes.txt", "t_9.csv"})

	assert.Equal(t, "t_18.csv", c.Next(nil))
	assert.Equal(t, "t_19.csv", c.Next(nil), "second call advances the cached counter")
}

func TestNext_EmptyListingStartsAtOne(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "t_1.csv", c.Next(nil))
}

func TestNext_WrapRequiresConfirmation(t *testing.T) {
	c := New([]string{"t_999.csv"})

	confirmed := false
	name := c.Next(func() { confirmed = true })

	assert.True(t, confirmed, "wrap past 999 must wait for operator confirmation")
	assert.Equal(t, "t_1.csv", name)
	assert.Equal(t, "t_2.csv", c.Next(nil), "counter resets after the wrap")
}

func TestNext_NoConfirmationBelowCeiling(t *testing.T) {
	c := New([]string{"t_998.csv"})

	name := c.Next(func() { t.Fatal("confirm must not be called below the ceiling") })
	assert.Equal(t, "t_999.csv", name)
}

func TestFileName_WithinLegacyLimits(t *testing.T) {
	for _, n := range []int{1, 42, 999} {
		name := FileName(n)
		assert.LessOrEqual(t, len(name), 12, "8.3 name limit")
		parsed, ok := ParseRunNumber(name)
		assert.True(t, ok)
		assert.Equal(t, n, parsed)
	}
}
