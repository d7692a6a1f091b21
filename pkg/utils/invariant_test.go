package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRaiseInvariant(t *testing.T) {
	invariantsMetric.Reset() // Reset the metric to ensure a clean state for the test
	RaiseInvariant("invariant", "test", "This is a test invariant violation")
	gotInvariants := GetMetricValue("invariant" /*module*/, "test" /*invariantType*/)
	assert.Equal(t, 1, gotInvariants)
}

func TestFault(t *testing.T) {
	invariantsMetric.Reset()
	assert.PanicsWithError(t, "chain fault: dangling", func() {
		Fault("chain", "dangling", "A test fault.", "node", 3)
	})
	assert.Equal(t, 1, GetMetricValue("chain" /*module*/, "dangling" /*invariantType*/))

	{ // The panic value carries the module and type.
		defer func() {
			fault, ok := recover().(*FaultError)
			assert.True(t, ok)
			assert.Equal(t, &FaultError{Module: "chain", Type: "again"}, fault)
		}()
		Fault("chain", "again", "Another test fault.")
	}
}
