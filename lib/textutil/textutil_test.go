package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFoldKey(t *testing.T) {
	testCases := []struct {
		name     string
		expected string
	}{
		{name: "Full Color", expected: "full color"},
		{name: "  ahegao\t ", expected: "ahegao"},
		{name: "ÉCCHI", expected: "écchi"},
		{name: "School   Uniform", expected: "school uniform"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, FoldKey(test.name))
	}
}

func TestNormalizeName(t *testing.T) {
	require.Equal(t, "schooluniform", NormalizeName(" School Uniform "))
}

func TestClosestMatch(t *testing.T) {
	best, ok := ClosestMatch("Genre", []string{"Sort", "Genres", "Status"})
	require.True(t, ok)
	require.Equal(t, "Genres", best)

	_, ok = ClosestMatch("Genre", nil)
	require.False(t, ok)
}
