package utils

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/require"
)

// SetTestFlag sets a flag to a specific value for the duration of the test.
func SetTestFlag(t *testing.T, name, value string) {
	t.Helper()
	flagHolder := flag.Lookup(name)
	require.NotNil(t, flagHolder, "Flag %s not found", name)
	if flagHolder != nil { // Revert the flag value back to its original when the test is done.
		prevValue := flagHolder.Value.String()
		t.Cleanup(func() { require.NoError(t, flag.Set(name, prevValue)) })
	}
	require.NoError(t, flag.Set(name, value))
}

// PreserveTestFlags restores the current values of the given flags when the test is done. Useful when the code under
// test sets flags itself, e.g. while loading a config file.
func PreserveTestFlags(t *testing.T, names ...string) {
	t.Helper()
	for _, name := range names {
		flagHolder := flag.Lookup(name)
		require.NotNil(t, flagHolder, "Flag %s not found", name)
		prevValue := flagHolder.Value.String()
		t.Cleanup(func() { require.NoError(t, flag.Set(name, prevValue)) })
	}
}
