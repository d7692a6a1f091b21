// Listing keys filters them with Redis glob patterns; the following module implements glob matching.

package scan

import (
	"iter"

	"github.com/tidwall/match"
)

// MatchGlob filters the `keys` stream with the given glob `pattern`. The pattern is matched against the whole key,
// with Redis semantics: `*` matches any run of characters and `?` any single one, `/` included.
func MatchGlob(pattern string, keys iter.Seq[string]) iter.Seq[string] {
	return func(yield func(string) bool) {
		for key := range keys {
			if match.Match(key, pattern) && !yield(key) {
				return
			}
		}
	}
}
