package funnels

import (
	"encoding/json"
	"fmt"
	"time"
)

// StepType discriminates the two kinds of funnel steps.
type StepType string

const (
	StepTypePage  StepType = "page"  // visited URL contains Value
	StepTypeEvent StepType = "event" // custom event name equals Value
)

// FunnelStep is one ordered step of a funnel definition.
type FunnelStep struct {
	Type  StepType `json:"type"`
	Value string   `json:"value"`
	Label string   `json:"label,omitempty"`
}

// DisplayLabel falls back to the step value when no label was given.
func (s FunnelStep) DisplayLabel() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Value
}

// stepsEnvelopeVersion is the current serialization version for the steps
// column. Bump it when the wire shape changes; decoding rejects versions it
// does not know.
const stepsEnvelopeVersion = 1

type stepsEnvelope struct {
	Version int          `json:"version"`
	Steps   []FunnelStep `json:"steps"`
}

// Funnel is a persisted funnel definition. Steps are stored as a versioned
// JSON envelope, decoupling the wire shape from the in-memory representation.
type Funnel struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SiteID      uint      `gorm:"index;not null" json:"site_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	StepsJSON   string    `gorm:"column:steps;not null" json:"-"`
	IsPreset    bool      `json:"is_preset"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Steps decodes the stored step list.
func (f *Funnel) Steps() ([]FunnelStep, error) {
	if f.StepsJSON == "" {
		return nil, nil
	}

	var envelope stepsEnvelope
	if err := json.Unmarshal([]byte(f.StepsJSON), &envelope); err != nil {
		return nil, fmt.Errorf("decoding funnel steps: %w", err)
	}
	if envelope.Version != stepsEnvelopeVersion {
		return nil, fmt.Errorf("unsupported funnel steps version: %d", envelope.Version)
	}
	return envelope.Steps, nil
}

// SetSteps validates and encodes the step list.
func (f *Funnel) SetSteps(steps []FunnelStep) error {
	if len(steps) == 0 {
		return fmt.Errorf("funnel requires at least one step")
	}
	for i, step := range steps {
		if step.Type != StepTypePage && step.Type != StepTypeEvent {
			return fmt.Errorf("step %d: unknown type %q", i+1, step.Type)
		}
		if step.Value == "" {
			return fmt.Errorf("step %d: value is required", i+1)
		}
	}

	encoded, err := json.Marshal(stepsEnvelope{Version: stepsEnvelopeVersion, Steps: steps})
	if err != nil {
		return fmt.Errorf("encoding funnel steps: %w", err)
	}
	f.StepsJSON = string(encoded)
	return nil
}
