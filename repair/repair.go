// Package repair implements the forgiving repair pipeline: a fixed, ordered
// catalogue of independent, side-effect-free text transforms applied to a
// document after strict parsing fails, with a hard attempt budget so that
// pathological input terminates instead of looping.
package repair

import (
	"fmt"

	"jsonlens/parser"
)

// OperationKind identifies which heuristic fix an operation applied
type OperationKind int

const (
	OpStructureCompletion OperationKind = iota
	OpTrailingCommaRemoval
	OpKeyQuoting
	OpQuoteNormalization
	OpControlCharEscape
	OpDuplicateKeyRemoval
)

// String returns the string representation of the OperationKind
func (k OperationKind) String() string {
	switch k {
	case OpStructureCompletion:
		return "StructureCompletion"
	case OpTrailingCommaRemoval:
		return "TrailingCommaRemoval"
	case OpKeyQuoting:
		return "KeyQuoting"
	case OpQuoteNormalization:
		return "QuoteNormalization"
	case OpControlCharEscape:
		return "ControlCharEscape"
	case OpDuplicateKeyRemoval:
		return "DuplicateKeyRemoval"
	default:
		return "Unknown"
	}
}

// ParseOperationKind converts a heuristic name to its OperationKind
func ParseOperationKind(s string) (OperationKind, bool) {
	kinds := []OperationKind{
		OpStructureCompletion, OpTrailingCommaRemoval, OpKeyQuoting,
		OpQuoteNormalization, OpControlCharEscape, OpDuplicateKeyRemoval,
	}
	for _, k := range kinds {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Operation records one heuristic fix: its kind, the byte span of the text
// it affected at the time it ran, and a human-readable detail. Accepted
// reports whether the fix ended up in a successfully parsed document;
// operations on a failed Result were applied and then discarded.
type Operation struct {
	Kind     OperationKind `json:"kind"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
	Detail   string        `json:"detail,omitempty"`
	Accepted bool          `json:"accepted"`
}

// Result is the outcome of a repair attempt. On success Operations lists the
// accepted fixes in application order; replaying them in that order against
// the original text deterministically reproduces Repaired. On failure it
// lists the fixes the pipeline tried before giving up, so callers can show
// what was attempted alongside the final parse error.
type Result struct {
	Success    bool        `json:"success"`
	Repaired   string      `json:"repaired,omitempty"`
	Operations []Operation `json:"operations,omitempty"`
	Attempts   int         `json:"attempts"`
	LastErr    error       `json:"-"`
}

// ExhaustedError reports that the transform budget ran out before reaching a
// strict parse. It wraps the last parse error for diagnostic context.
type ExhaustedError struct {
	Attempts int
	LastErr  error
}

// Error implements the error interface
func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("repair exhausted after %d attempts: %v", e.Attempts, e.LastErr)
}

// Unwrap returns the last strict parse error
func (e *ExhaustedError) Unwrap() error {
	return e.LastErr
}

// transform is one heuristic: a pure text-to-text function returning the
// candidate text plus the operations it would log. A transform that finds
// nothing to fix returns its input unchanged.
type transform struct {
	kind  OperationKind
	apply func(string) (string, []Operation)
}

// Pipeline holds the ordered heuristic catalogue and the attempt budget.
// The order is a policy decision: structural completion, then comma cleanup,
// then quoting fixes, then escaping fixes, then duplicate-key removal.
type Pipeline struct {
	budget   int
	disabled map[OperationKind]bool
}

// DefaultBudget bounds the number of strict-parse attempts per repair call
const DefaultBudget = 64

// NewPipeline creates a Pipeline with the given attempt budget. A budget of
// zero or less falls back to DefaultBudget.
func NewPipeline(budget int) *Pipeline {
	if budget <= 0 {
		budget = DefaultBudget
	}
	return &Pipeline{budget: budget, disabled: make(map[OperationKind]bool)}
}

// Disable removes a heuristic from the catalogue for this pipeline
func (p *Pipeline) Disable(kind OperationKind) {
	p.disabled[kind] = true
}

func (p *Pipeline) catalogue() []transform {
	all := []transform{
		{OpStructureCompletion, completeStructures},
		{OpTrailingCommaRemoval, removeTrailingCommas},
		{OpKeyQuoting, quoteBareKeys},
		{OpQuoteNormalization, normalizeQuotes},
		{OpControlCharEscape, escapeControlChars},
		{OpDuplicateKeyRemoval, removeDuplicateKeys},
	}
	active := all[:0]
	for _, t := range all {
		if !p.disabled[t.kind] {
			active = append(active, t)
		}
	}
	return active
}

// Repair attempts to make text strictly parseable. Already-valid input is
// returned unchanged with zero operations, which also makes repair
// idempotent: repairing a repaired document is a no-op.
//
// Strategy: each heuristic is first tried alone, so a document needing a
// single class of fix logs only that class. If no single heuristic succeeds
// the pipeline composes them cumulatively in catalogue order, re-attempting
// a full strict parse after every change, until it parses end-to-end, no
// transform changes the text, or the budget is spent. The end-to-end
// re-parse is what guarantees an accepted fix left the document's
// already-valid regions intact.
func (p *Pipeline) Repair(text string) Result {
	attempts := 0
	var lastErr error
	tryParse := func(candidate string) bool {
		attempts++
		if _, err := parser.ParseString(candidate); err != nil {
			lastErr = err
			return false
		}
		return true
	}

	if tryParse(text) {
		return Result{Success: true, Repaired: text, Attempts: attempts}
	}

	catalogue := p.catalogue()

	// Phase 1: each heuristic alone
	for _, t := range catalogue {
		if attempts >= p.budget {
			return p.exhausted(attempts, nil, lastErr)
		}
		candidate, ops := t.apply(text)
		if candidate == text {
			continue
		}
		if tryParse(candidate) {
			return Result{Success: true, Repaired: candidate, Operations: markAccepted(ops), Attempts: attempts}
		}
	}

	// Phase 2: cumulative composition in catalogue order, repeated until a
	// full pass changes nothing. The composed operation trail survives into a
	// failed Result as the record of what was tried.
	current := text
	var composed []Operation
	for {
		changed := false
		for _, t := range catalogue {
			if attempts >= p.budget {
				return p.exhausted(attempts, composed, lastErr)
			}
			candidate, ops := t.apply(current)
			if candidate == current {
				continue
			}
			changed = true
			current = candidate
			composed = append(composed, ops...)
			if tryParse(current) {
				return Result{Success: true, Repaired: current, Operations: markAccepted(composed), Attempts: attempts}
			}
		}
		if !changed {
			break
		}
	}

	return p.exhausted(attempts, composed, lastErr)
}

func (p *Pipeline) exhausted(attempts int, tried []Operation, lastErr error) Result {
	return Result{
		Success:    false,
		Operations: tried,
		Attempts:   attempts,
		LastErr:    &ExhaustedError{Attempts: attempts, LastErr: lastErr},
	}
}

func markAccepted(ops []Operation) []Operation {
	for i := range ops {
		ops[i].Accepted = true
	}
	return ops
}
