package repair

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsonlens/parser"
	"jsonlens/types"
)

func TestRepairValidInputIsNoOp(t *testing.T) {
	p := NewPipeline(0)
	input := `{"a": 1, "b": [true, null]}`

	result := p.Repair(input)

	require.True(t, result.Success)
	assert.Equal(t, input, result.Repaired)
	assert.Empty(t, result.Operations)
	assert.Equal(t, 1, result.Attempts)
}

func TestRepairTrailingCommaLogsSingleOperation(t *testing.T) {
	p := NewPipeline(0)

	result := p.Repair(`{"a": 1, "b": 2,}`)

	require.True(t, result.Success)
	require.Len(t, result.Operations, 1)
	assert.Equal(t, OpTrailingCommaRemoval, result.Operations[0].Kind)
	assert.Equal(t, 15, result.Operations[0].Start)
	assert.Equal(t, 16, result.Operations[0].End)
	assert.True(t, result.Operations[0].Accepted)

	v, err := parser.ParseString(result.Repaired)
	require.NoError(t, err)
	obj := v.(*types.Object)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
}

func TestRepairSingleHeuristicCases(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind OperationKind
	}{
		{"unterminated structures", `{"items": [1, 2`, OpStructureCompletion},
		{"unterminated string", `{"msg": "hello`, OpStructureCompletion},
		{"bare keys", `{name: "x", count: 2}`, OpKeyQuoting},
		{"single quotes", `{'a': 'hi'}`, OpQuoteNormalization},
		{"raw newline in string", "{\"a\": \"line1\nline2\"}", OpControlCharEscape},
		{"raw tab in string", "{\"a\": \"col1\tcol2\"}", OpControlCharEscape},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPipeline(0)
			result := p.Repair(tt.input)

			require.True(t, result.Success, "repair failed: %v", result.LastErr)
			require.NotEmpty(t, result.Operations)
			for _, op := range result.Operations {
				assert.Equal(t, tt.wantKind, op.Kind)
			}
			_, err := parser.ParseString(result.Repaired)
			assert.NoError(t, err)
		})
	}
}

func TestRepairDuplicateKeysKeepsLast(t *testing.T) {
	p := NewPipeline(0)

	result := p.Repair(`{"a": 1, "a": 2}`)

	require.True(t, result.Success, "repair failed: %v", result.LastErr)
	require.Len(t, result.Operations, 1)
	assert.Equal(t, OpDuplicateKeyRemoval, result.Operations[0].Kind)

	v, err := parser.ParseString(result.Repaired)
	require.NoError(t, err)
	obj := v.(*types.Object)
	assert.Equal(t, 1, obj.Len())
	got, _ := obj.Get("a")
	assert.True(t, types.Equal(types.IntNumber(2), got))
}

func TestRepairNestedDuplicateKeys(t *testing.T) {
	p := NewPipeline(0)

	result := p.Repair(`{"outer": {"k": "old", "k": "new"}, "list": [{"x": 1, "x": 2}]}`)

	require.True(t, result.Success, "repair failed: %v", result.LastErr)
	v, err := parser.ParseString(result.Repaired)
	require.NoError(t, err)

	obj := v.(*types.Object)
	outerV, _ := obj.Get("outer")
	kept, _ := outerV.(*types.Object).StringValue("k")
	assert.Equal(t, "new", kept)

	listV, _ := obj.Get("list")
	elem := listV.(types.Array)[0].(*types.Object)
	got, _ := elem.Get("x")
	assert.True(t, types.Equal(types.IntNumber(2), got))
}

func TestRepairComposesHeuristics(t *testing.T) {
	p := NewPipeline(0)

	result := p.Repair(`{a: 1,}`)

	require.True(t, result.Success, "repair failed: %v", result.LastErr)
	kinds := make([]OperationKind, 0, len(result.Operations))
	for _, op := range result.Operations {
		kinds = append(kinds, op.Kind)
	}
	assert.Contains(t, kinds, OpTrailingCommaRemoval)
	assert.Contains(t, kinds, OpKeyQuoting)

	v, err := parser.ParseString(result.Repaired)
	require.NoError(t, err)
	got, _ := v.(*types.Object).Get("a")
	assert.True(t, types.Equal(types.IntNumber(1), got))
}

func TestRepairPreservesValidRegions(t *testing.T) {
	p := NewPipeline(0)

	result := p.Repair(`{"keep": "a, b: {c}", "broken": [1, 2,]}`)

	require.True(t, result.Success, "repair failed: %v", result.LastErr)
	v, err := parser.ParseString(result.Repaired)
	require.NoError(t, err)

	obj := v.(*types.Object)
	kept, ok := obj.StringValue("keep")
	require.True(t, ok)
	assert.Equal(t, "a, b: {c}", kept, "string contents must survive repair untouched")
}

func TestRepairIdempotent(t *testing.T) {
	p := NewPipeline(0)
	inputs := []string{
		`{"a": 1, "b": 2,}`,
		`{name: "x"}`,
		`{"items": [1, 2`,
		`{'a': 'hi'}`,
	}
	for _, input := range inputs {
		first := p.Repair(input)
		require.True(t, first.Success, "repair of %q failed: %v", input, first.LastErr)

		second := p.Repair(first.Repaired)
		require.True(t, second.Success)
		assert.Empty(t, second.Operations, "repairing repaired output of %q must be a no-op", input)
		assert.Equal(t, first.Repaired, second.Repaired)
	}
}

func TestRepairBudgetExhaustion(t *testing.T) {
	p := NewPipeline(1)

	result := p.Repair(`{a: 1,}`)

	require.False(t, result.Success)
	var exhausted *ExhaustedError
	require.True(t, errors.As(result.LastErr, &exhausted))
	assert.LessOrEqual(t, exhausted.Attempts, 1)
	assert.Error(t, errors.Unwrap(exhausted))
}

func TestRepairUnrepairableInput(t *testing.T) {
	p := NewPipeline(0)
	inputs := []string{
		`{"a": }`,
		`{"a" 1}`,
		`{"a": 1}}`,
	}
	for _, input := range inputs {
		result := p.Repair(input)
		assert.False(t, result.Success, "expected %q to stay unrepairable", input)
		assert.Error(t, result.LastErr)
	}
}

func TestFailedRepairReportsTriedOperations(t *testing.T) {
	p := NewPipeline(0)

	// Key quoting applies but the empty value keeps the document unparseable
	result := p.Repair(`{a: }`)

	require.False(t, result.Success)
	require.NotEmpty(t, result.Operations, "a failed repair must report what it tried")
	kinds := make([]OperationKind, 0, len(result.Operations))
	for _, op := range result.Operations {
		assert.False(t, op.Accepted, "operations on a failed result are discarded, not accepted")
		kinds = append(kinds, op.Kind)
	}
	assert.Contains(t, kinds, OpKeyQuoting)
	assert.GreaterOrEqual(t, result.Attempts, 2)
}

func TestFailedRepairWithNothingApplicable(t *testing.T) {
	p := NewPipeline(0)

	result := p.Repair(`{"a": }`)

	require.False(t, result.Success)
	assert.Empty(t, result.Operations, "no heuristic applies to this document")
}

func TestRepairTerminatesOnPathologicalInput(t *testing.T) {
	p := NewPipeline(0)

	result := p.Repair(strings.Repeat(`{"a":`, 200))

	assert.False(t, result.Success)
	assert.LessOrEqual(t, result.Attempts, DefaultBudget)
}

func TestRepairDisabledHeuristic(t *testing.T) {
	p := NewPipeline(0)
	p.Disable(OpTrailingCommaRemoval)

	result := p.Repair(`{"a": 1,}`)

	assert.False(t, result.Success, "disabled heuristic must not run")
}

func TestOperationKindRoundTrip(t *testing.T) {
	kinds := []OperationKind{
		OpStructureCompletion, OpTrailingCommaRemoval, OpKeyQuoting,
		OpQuoteNormalization, OpControlCharEscape, OpDuplicateKeyRemoval,
	}
	for _, k := range kinds {
		parsed, ok := ParseOperationKind(k.String())
		require.True(t, ok, "kind %s did not parse", k)
		assert.Equal(t, k, parsed)
	}
	_, ok := ParseOperationKind("NotAHeuristic")
	assert.False(t, ok)
}
