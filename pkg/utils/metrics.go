// Every container counts the nodes it creates and frees. Over a container's whole life both counters must end up
// equal; a growing gap between them is a leak (e.g. a reference cycle that was never severed).

package utils

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	promclient "github.com/prometheus/client_model/go"
)

var (
	nodesAllocated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chain_nodes_allocated_total",
		Help: "Total number of chain nodes created.",
	}, []string{"container"})
	nodesFreed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chain_nodes_freed_total",
		Help: "Total number of chain nodes freed by their last owner.",
	}, []string{"container"})
)

// NodeAllocated records a node creation in the given container kind.
func NodeAllocated(container string) {
	nodesAllocated.WithLabelValues(container).Inc()
}

// NodeFreed records a node being freed in the given container kind.
func NodeFreed(container string) {
	nodesFreed.WithLabelValues(container).Inc()
}

// GetNodeCounts returns the allocated and freed node counters of the given container kind.
func GetNodeCounts(container string) ( /*allocated*/ int /*freed*/, int) {
	return counterValue(nodesAllocated, container), counterValue(nodesFreed, container)
}

func counterValue(vec *prometheus.CounterVec, container string) int {
	metric := &promclient.Metric{}
	if err := vec.WithLabelValues(container).Write(metric); err != nil {
		slog.Error("Failed to read node counter.", "container", container, "error", err)
		return 0
	}
	return int(metric.Counter.GetValue())
}
