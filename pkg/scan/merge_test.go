package scan

import (
	"cmp"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge(t *testing.T) {
	s1 := slices.Values([]string{"k1", "k2", "k3", "k4"})
	s2 := slices.Values([]string{"k1", "k2", "k5", "k6"})
	s3 := slices.Values([]string{"k1", "k2", "k4", "k5"})
	s4 := slices.Values([]string{"k3"})
	merged, err := Merge(cmp.Compare[string], []iter.Seq[string]{s1, s2, s3, s4})
	require.NoError(t, err)

	assert.Equal(t, []string{"k1", "k2", "k3", "k4", "k5", "k6"}, slices.Collect(merged))
}

func TestMerge_EmptySequences(t *testing.T) {
	merged, err := Merge(cmp.Compare[int], []iter.Seq[int]{slices.Values([]int(nil)), slices.Values([]int{})})
	require.NoError(t, err)
	assert.Empty(t, slices.Collect(merged))

	merged, err = Merge(cmp.Compare[int], []iter.Seq[int]{slices.Values([]int{}), slices.Values([]int{3, 7})})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, slices.Collect(merged))
}

func TestMerge_StopsEarly(t *testing.T) {
	merged, err := Merge(cmp.Compare[int], []iter.Seq[int]{
		slices.Values([]int{1, 4, 7}), slices.Values([]int{2, 5, 8}), slices.Values([]int{3, 6, 9}),
	})
	require.NoError(t, err)

	var got []int
	for key := range merged {
		got = append(got, key)
		if len(got) == 4 {
			break
		}
	}
	assert.Equal(t, []int{1, 2, 3, 4}, got)
}

func TestMerge_InvalidArguments(t *testing.T) {
	_, err := Merge[int](nil, []iter.Seq[int]{slices.Values([]int{1})})
	assert.Error(t, err)
	_, err = Merge(cmp.Compare[int], nil)
	assert.Error(t, err)
}
