package deliberation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validUtterance = "Renewable energy should replace fossil fuels because long-term evidence shows declining costs and measurable climate benefits for society."

func TestGate_Evaluate_Accepts(t *testing.T) {
	gate := NewGate(DefaultGateConfig())

	result := gate.Evaluate(validUtterance, nil)

	assert.True(t, result.Accepted)
	assert.Empty(t, result.Reasons)
}

func TestGate_Evaluate_TooShort(t *testing.T) {
	gate := NewGate(DefaultGateConfig())

	result := gate.Evaluate("Solar is good.", nil)

	require.False(t, result.Accepted)
	assertHasReason(t, result.Reasons, "too short")
}

func TestGate_Evaluate_Empty(t *testing.T) {
	gate := NewGate(DefaultGateConfig())

	result := gate.Evaluate("   ", nil)

	require.False(t, result.Accepted)
	assert.Equal(t, []string{"utterance is empty"}, result.Reasons)
}

func TestGate_Evaluate_LacksSubstance(t *testing.T) {
	gate := NewGate(DefaultGateConfig())

	// Long enough and carries a reasoning indicator, but nearly everything
	// is filler.
	result := gate.Evaluate("i think i believe in my opinion it seems to me as we know this should happen", nil)

	require.False(t, result.Accepted)
	assert.Equal(t, []string{"utterance lacks substantive content"}, result.Reasons)
}

func TestGate_Evaluate_RejectsIdenticalPredecessor(t *testing.T) {
	gate := NewGate(DefaultGateConfig())

	result := gate.Evaluate(validUtterance, []string{validUtterance})

	require.False(t, result.Accepted)
	assertHasReason(t, result.Reasons, "too similar")
}

func TestGate_Evaluate_NoveltyIgnoresCaseAndPunctuation(t *testing.T) {
	gate := NewGate(DefaultGateConfig())

	reworded := "RENEWABLE energy should replace fossil fuels, because long-term evidence shows declining costs and measurable climate benefits for society!!"
	result := gate.Evaluate(reworded, []string{validUtterance})

	require.False(t, result.Accepted)
	assertHasReason(t, result.Reasons, "too similar")
}

func TestGate_Evaluate_NoveltyWindowLimitsComparison(t *testing.T) {
	gate := NewGate(GateConfig{NoveltyWindow: 2})

	// The duplicate is older than the comparison window, so it is not seen.
	used := []string{
		validUtterance,
		"However the grid integration data suggests storage research must mature before full reliance is feasible.",
		"Ethical analysis indicates society must weigh intergenerational duties because climate harms compound over decades.",
	}
	result := gate.Evaluate(validUtterance, used)

	assert.True(t, result.Accepted)
}

func TestGate_Evaluate_LacksReasoningIndicators(t *testing.T) {
	gate := NewGate(DefaultGateConfig())

	result := gate.Evaluate("The sky sometimes turns orange at dusk and many people enjoy taking photographs of it.", nil)

	require.False(t, result.Accepted)
	assert.Equal(t, []string{"utterance lacks clear reasoning indicators"}, result.Reasons)
}

func TestGate_Evaluate_RejectsPlaceholders(t *testing.T) {
	gate := NewGate(DefaultGateConfig())

	cases := map[string]string{
		"bracket":  "[Insert argument here] because evidence strongly suggests that this policy would be beneficial overall.",
		"angle":    "We should act now <add supporting data> because the research on this topic is extensive and clear.",
		"todo":     "TODO finish this argument because the evidence must still be gathered from several independent studies.",
		"sentinel": "[Error generating argument: upstream timeout] because the request failed before any content was produced.",
	}

	for name, candidate := range cases {
		t.Run(name, func(t *testing.T) {
			result := gate.Evaluate(candidate, nil)
			require.False(t, result.Accepted)
			assertHasReason(t, result.Reasons, "placeholder or error text")
		})
	}
}

func TestGate_Evaluate_CollectsAllReasons(t *testing.T) {
	gate := NewGate(DefaultGateConfig())

	result := gate.Evaluate("Bad.", nil)

	require.False(t, result.Accepted)
	assert.Len(t, result.Reasons, 3)
	assertHasReason(t, result.Reasons, "too short")
	assertHasReason(t, result.Reasons, "substantive content")
	assertHasReason(t, result.Reasons, "reasoning indicators")
}

func TestNewGate_ZeroConfigUsesDefaults(t *testing.T) {
	gate := NewGate(GateConfig{})

	assert.Equal(t, 10, gate.cfg.MinWords)
	assert.InDelta(t, 0.7, gate.cfg.MaxSimilarity, 1e-9)
	assert.Equal(t, 5, gate.cfg.NoveltyWindow)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "hello world again", normalizeText("  Hello,   WORLD!! again.  "))
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("identical text", "identical text"), 1e-9)
	assert.InDelta(t, 0.0, similarity("", "something"), 1e-9)
	assert.Less(t, similarity("renewable energy is the future of power", "strict liability belongs in tort law"), 0.5)
}

func assertHasReason(t *testing.T, reasons []string, substr string) {
	t.Helper()
	for _, r := range reasons {
		if strings.Contains(r, substr) {
			return
		}
	}
	t.Fatalf("no reason containing %q in %v", substr, reasons)
}
