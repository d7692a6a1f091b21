package scan

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchGlob(t *testing.T) {
	keys := []string{"key1", "key2", "anotherkey", "jobs/high", "jobs/low"}

	for _, testCase := range []struct {
		name     string
		glob     string
		expected []string
	}{
		{name: "match all", glob: "*", expected: keys},
		{name: "match with ?", glob: "key?", expected: []string{"key1", "key2"}},
		{name: "match with * at the end", glob: "key*", expected: []string{"key1", "key2"}},
		{name: "match with * at the beginning", glob: "*key", expected: []string{"anotherkey"}},
		{name: "match with multiple *", glob: "*key*", expected: []string{"key1", "key2", "anotherkey"}},
		{name: "match across slashes", glob: "jobs*", expected: []string{"jobs/high", "jobs/low"}},
		{name: "match nested keys", glob: "*/low", expected: []string{"jobs/low"}},
		{name: "literal", glob: "jobs/high", expected: []string{"jobs/high"}},
		{name: "no match", glob: "nomatch", expected: nil},
	} {
		t.Run(testCase.name, func(t *testing.T) {
			got := slices.Collect(MatchGlob(testCase.glob, slices.Values(keys)))
			assert.Equal(t, testCase.expected, got)
		})
	}
}
