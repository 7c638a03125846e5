package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Engine-level counters. Registered once at package init; incremented only
// from the facade so the core packages stay pure.
var (
	documentsParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jsonlens_documents_parsed_total",
		Help: "Documents processed by DetectAndParse, by outcome (strict, repaired, failed).",
	}, []string{"outcome"})

	documentsByFormat = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jsonlens_documents_by_format_total",
		Help: "Successfully parsed documents by detected conversation format.",
	}, []string{"format"})

	repairOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jsonlens_repair_operations_total",
		Help: "Accepted repair operations by heuristic kind.",
	}, []string{"kind"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "jsonlens_cache_lookups_total",
		Help: "Render cache lookups by result (hit, miss).",
	}, []string{"result"})

	streamElements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "jsonlens_stream_elements_total",
		Help: "Elements yielded by the streaming adapter.",
	})
)
