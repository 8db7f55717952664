package funnels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepsRoundTrip(t *testing.T) {
	funnel := &Funnel{}
	steps := []FunnelStep{
		{Type: StepTypePage, Value: "/", Label: "Landing"},
		{Type: StepTypeEvent, Value: "purchase"},
	}

	require.NoError(t, funnel.SetSteps(steps))
	assert.Contains(t, funnel.StepsJSON, `"version":1`)

	decoded, err := funnel.Steps()
	require.NoError(t, err)
	assert.Equal(t, steps, decoded)
}

func TestSetStepsValidation(t *testing.T) {
	funnel := &Funnel{}

	assert.Error(t, funnel.SetSteps(nil), "empty step list")
	assert.Error(t, funnel.SetSteps([]FunnelStep{{Type: "bogus", Value: "/"}}), "unknown type")
	assert.Error(t, funnel.SetSteps([]FunnelStep{{Type: StepTypePage}}), "missing value")
}

func TestStepsRejectsUnknownVersion(t *testing.T) {
	funnel := &Funnel{StepsJSON: `{"version":99,"steps":[]}`}
	_, err := funnel.Steps()
	assert.Error(t, err)
}

func TestDisplayLabel(t *testing.T) {
	assert.Equal(t, "Landing", FunnelStep{Value: "/", Label: "Landing"}.DisplayLabel())
	assert.Equal(t, "/pricing", FunnelStep{Value: "/pricing"}.DisplayLabel())
}
