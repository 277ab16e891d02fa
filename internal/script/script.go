// Package script assembles negotiation steps into a consultation script and
// renders it either as a printable document or as directives for the
// generation service.
package script

import (
	"slices"

	"github.com/eumlog/consultation-engine/internal/intake"
	"github.com/eumlog/consultation-engine/internal/negotiation"
)

// ConsultationScript is the ordered step list for one record snapshot plus
// the closing step. It is immutable once built.
type ConsultationScript struct {
	record  intake.ClientRecord
	steps   []negotiation.Step
	closing negotiation.Step
}

// Build evaluates every policy once against rec.
func Build(rec intake.ClientRecord) *ConsultationScript {
	rec.SelectedConditions = rec.Conditions()
	return &ConsultationScript{
		record:  rec,
		steps:   negotiation.Evaluate(rec),
		closing: negotiation.Closing(rec),
	}
}

// Record returns the snapshot the script was built from.
func (s *ConsultationScript) Record() intake.ClientRecord {
	rec := s.record
	rec.SelectedConditions = rec.Conditions()
	return rec
}

// Tier is the membership plan of the snapshot.
func (s *ConsultationScript) Tier() intake.Tier { return s.record.Tier() }

// Steps returns the attribute steps without the closing step.
func (s *ConsultationScript) Steps() []negotiation.Step {
	return slices.Clone(s.steps)
}

// Closing returns the closing step.
func (s *ConsultationScript) Closing() negotiation.Step { return s.closing }

// All returns the attribute steps followed by the closing step.
func (s *ConsultationScript) All() []negotiation.Step {
	return append(s.Steps(), s.closing)
}
