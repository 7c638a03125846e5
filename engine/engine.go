// Package engine is the public facade over the ingestion pipeline: strict
// parse with repair fallback, format detection, rendering with result
// caching, search, and streaming. The presentation and CLI layers consume
// only this package.
package engine

import (
	"context"
	"fmt"
	"os"

	"jsonlens/cache"
	"jsonlens/config"
	"jsonlens/detector"
	"jsonlens/internal"
	"jsonlens/logger"
	"jsonlens/parser"
	"jsonlens/render"
	"jsonlens/repair"
	"jsonlens/stream"
	"jsonlens/types"
)

// ParseOutcome is the result of DetectAndParse. Repair is non-nil only when
// the repair pipeline ran (and succeeded); strict parses never invoke it.
type ParseOutcome struct {
	Value  types.Value
	Format types.ConversationFormat
	Repair *repair.Result
}

// RepairFailedError reports that neither strict parsing nor the repair
// pipeline could make sense of a document. It carries the full repair
// result so callers can show the fix log alongside the final parse error.
type RepairFailedError struct {
	Result repair.Result
}

// Error implements the error interface
func (e *RepairFailedError) Error() string {
	return fmt.Sprintf("document unrepairable: %v", e.Result.LastErr)
}

// Unwrap returns the repair pipeline's terminal error
func (e *RepairFailedError) Unwrap() error {
	return e.Result.LastErr
}

// Engine ties the pipeline together. It is safe for concurrent use: every
// invocation works on its own document and the only shared state is the
// result cache, which does its own locking.
type Engine struct {
	cfg      *config.Config
	pipeline *repair.Pipeline
	cache    *cache.ResultCache
	obs      *logger.ObservabilityLogger
}

// New creates an Engine from configuration. obs may be nil, which disables
// observability logging without affecting results.
func New(cfg *config.Config, obs *logger.ObservabilityLogger) *Engine {
	pipeline := repair.NewPipeline(cfg.RepairBudget)
	for _, name := range cfg.DisabledRepairHeuristics {
		if kind, ok := repair.ParseOperationKind(name); ok {
			pipeline.Disable(kind)
		}
	}
	return &Engine{
		cfg:      cfg,
		pipeline: pipeline,
		cache:    cache.New(cfg.CacheTTL, cfg.CacheMaxBytes),
		obs:      obs,
	}
}

// DetectAndParse strictly parses raw, falling back to the repair pipeline on
// failure, and classifies the result. sizeHint (when positive) is the
// declared input size; oversized inputs are accepted but logged, since the
// streaming path is the intended route for them.
func (e *Engine) DetectAndParse(ctx context.Context, raw []byte, sizeHint int64) (*ParseOutcome, error) {
	requestID := internal.GetRequestID(ctx)
	if sizeHint <= 0 {
		sizeHint = int64(len(raw))
	}
	if sizeHint > e.cfg.StreamThresholdBytes && e.obs != nil {
		fields := map[string]interface{}{"size": sizeHint, "threshold": e.cfg.StreamThresholdBytes}
		if source := internal.GetSourcePath(ctx); source != "" {
			fields["source"] = source
		}
		e.obs.Warn(logger.ComponentEngine, logger.CategoryWarning, requestID,
			"Input above streaming threshold handled in memory", fields)
	}

	text := string(raw)
	if v, err := parser.ParseString(text); err == nil {
		format := detector.Detect(v)
		documentsParsed.WithLabelValues("strict").Inc()
		documentsByFormat.WithLabelValues(format.String()).Inc()
		if e.obs != nil {
			e.obs.ClassificationDecision(requestID, format.String(), false, nil)
		}
		return &ParseOutcome{Value: v, Format: format}, nil
	}

	result := e.pipeline.Repair(text)
	if !result.Success {
		documentsParsed.WithLabelValues("failed").Inc()
		if e.obs != nil {
			e.obs.Error(logger.ComponentRepair, logger.CategoryError, requestID, "Repair exhausted",
				map[string]interface{}{"attempts": result.Attempts, "operations_tried": len(result.Operations)})
		}
		return nil, &RepairFailedError{Result: result}
	}

	v, err := parser.ParseString(result.Repaired)
	if err != nil {
		// The pipeline verified this parse; failing here is a bug, surface it
		documentsParsed.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("repaired document failed re-parse: %w", err)
	}
	format := detector.Detect(v)
	documentsParsed.WithLabelValues("repaired").Inc()
	documentsByFormat.WithLabelValues(format.String()).Inc()
	for _, op := range result.Operations {
		repairOperations.WithLabelValues(op.Kind.String()).Inc()
	}
	if e.obs != nil {
		e.obs.RepairEvent(requestID, len(result.Operations), result.Attempts, nil)
		e.obs.ClassificationDecision(requestID, format.String(), true, nil)
	}
	return &ParseOutcome{Value: v, Format: format, Repair: &result}, nil
}

// Render produces the requested view of a parsed document, bypassing the
// cache. Options with a zero indent inherit the configured width.
func (e *Engine) Render(v types.Value, format types.ConversationFormat, opts types.RenderOptions) string {
	if opts.Indent <= 0 {
		opts.Indent = e.cfg.IndentWidth
	}
	return render.Render(v, format, opts)
}

// RenderCached renders through the result cache, keyed by the document
// content and the render options. The second return value reports a cache
// hit. Rendering runs outside the cache lock.
func (e *Engine) RenderCached(ctx context.Context, content []byte, v types.Value, format types.ConversationFormat, opts types.RenderOptions) (string, bool, error) {
	if opts.Indent <= 0 {
		opts.Indent = e.cfg.IndentWidth
	}
	key := cache.Key(content, opts)
	out, hit, err := e.cache.GetOrRender(key, func() (string, error) {
		return render.Render(v, format, opts), nil
	})
	if err != nil {
		return "", false, err
	}
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
	} else {
		cacheLookups.WithLabelValues("miss").Inc()
	}
	if e.obs != nil {
		e.obs.CacheEvent(internal.GetRequestID(ctx), hit, nil)
	}
	return out, hit, nil
}

// Search returns ordered match locations for term within the document
func (e *Engine) Search(v types.Value, format types.ConversationFormat, term string, caseSensitive bool) []render.Match {
	return render.Search(v, format, term, caseSensitive)
}

// Stream incrementally processes the document at path, invoking handler per
// top-level element. Repair is never attempted on streamed input.
func (e *Engine) Stream(ctx context.Context, path string, handler stream.Handler) (*stream.Summary, error) {
	requestID := internal.GetRequestID(ctx)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() <= e.cfg.StreamThresholdBytes && e.obs != nil {
		e.obs.Debug(logger.ComponentStream, logger.CategoryDebug, requestID,
			"Streaming a document under the threshold",
			map[string]interface{}{"size": info.Size(), "threshold": e.cfg.StreamThresholdBytes})
	}

	counted := func(el stream.Element) error {
		streamElements.Inc()
		return handler(el)
	}
	summary, err := stream.Process(f, counted)
	if summary != nil && e.obs != nil {
		e.obs.StreamEvent(requestID, summary.Elements, summary.Mixed,
			map[string]interface{}{"bytes": summary.Bytes, "format": summary.Format.String()})
	}
	return summary, err
}

// Close clears the result cache; no cache entry outlives the process
func (e *Engine) Close() {
	e.cache.Clear()
}

// CacheStats exposes resident cache size for diagnostics
func (e *Engine) CacheStats() (entries, bytes int) {
	return e.cache.Len(), e.cache.Size()
}
