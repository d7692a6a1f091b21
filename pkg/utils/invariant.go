// Package invariant introduces a way to handle unexpected bugs / conditions in code.
// Invariants are conditions in code that must be true; otherwise, there is a bug in code.
// Think of what you'd `panic()` on (equivalent to `assert` in other languages),
// but you don't want to crash the process just because of that violation. If an invariant is violated,
// a log error is recorded, and a monitoring counter is incremented that will trigger an alert.
// Bear in mind that it is still up to you (the caller) to handle the erroneous case in your code and, for example,
// do an early return and skip the following computations.
//
// Some violations can't be handled by the caller at all: two live mutable views into one node, or dereferencing
// a handle to a node that was already freed. Continuing after those corrupts the chain, so they are reported
// through Fault, which records the same metric and log and then always panics.

package utils

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

var invariantsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "invariants_total",
	Help: "The total number of invariant violations",
}, []string{
	"module", // The module in which this invariant occurred.
	"type",   // The type of the invariant that occurred.
})

// FaultError is the panic value raised by Fault.
type FaultError struct {
	Module string
	Type   string
}

func (f *FaultError) Error() string {
	return fmt.Sprintf("%s fault: %s", f.Module, f.Type)
}

func RaiseInvariant(module, invariantType, msg string, args ...any) {
	invariantsMetric.WithLabelValues(module, invariantType).Inc()
	slog.With("invariant", invariantType, "module", module).Error(msg, args...)
	if IsTestMode {
		panic("invariant violated: " + invariantType)
	}
}

// Fault reports an unrecoverable ownership violation and aborts the current operation by panicking with *FaultError.
func Fault(module, faultType, msg string, args ...any) {
	invariantsMetric.WithLabelValues(module, faultType).Inc()
	slog.With("invariant", faultType, "module", module).Error(msg, args...)
	panic(&FaultError{Module: module, Type: faultType})
}

// GetMetricValue returns the current value of invariant metric with labels `invariantLabel` and `owner`.
func GetMetricValue(module, invariantType string) int {
	var metric = &promclient.Metric{}
	if err := invariantsMetric.WithLabelValues(module, invariantType).Write(metric); err != nil {
		slog.Error(err.Error())
		return 0
	}
	return int(metric.Counter.GetValue())
}
