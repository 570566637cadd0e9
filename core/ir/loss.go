package ir

// LossClass represents the fidelity level of a conversion.
type LossClass string

// Loss class constants, from most to least fidelity.
const (
	// LossL0 indicates lossless conversion - exact round-trip possible.
	LossL0 LossClass = "L0"

	// LossL1 indicates semantically lossless - meaning preserved, form may differ
	// (e.g., a false boolean attribute that is simply omitted).
	LossL1 LossClass = "L1"

	// LossL2 indicates minor loss - markup reduced to its text.
	LossL2 LossClass = "L2"

	// LossL3 indicates significant loss - annotations dropped.
	LossL3 LossClass = "L3"

	// LossL4 indicates plain text only - only raw text preserved.
	LossL4 LossClass = "L4"
)

// validLossClasses is the set of valid loss classes.
var validLossClasses = map[LossClass]bool{
	LossL0: true,
	LossL1: true,
	LossL2: true,
	LossL3: true,
	LossL4: true,
}

// IsValid returns true if the loss class is valid.
func (l LossClass) IsValid() bool {
	return validLossClasses[l]
}

// Level returns the numeric level (0-4) of the loss class.
func (l LossClass) Level() int {
	switch l {
	case LossL0:
		return 0
	case LossL1:
		return 1
	case LossL2:
		return 2
	case LossL3:
		return 3
	case LossL4:
		return 4
	default:
		return -1
	}
}

// IsLossless returns true if this loss class indicates no data loss.
func (l LossClass) IsLossless() bool {
	return l == LossL0
}

// IsSemanticallyLossless returns true if content is fully preserved.
func (l LossClass) IsSemanticallyLossless() bool {
	return l == LossL0 || l == LossL1
}

// LostElement describes a specific piece of data that was lost during conversion.
type LostElement struct {
	// Path is the location in the source (e.g., "lines[3].annotations[0].attributes.open").
	Path string `json:"path"`

	// ElementType describes what was lost (e.g., "attribute", "annotation", "node").
	ElementType string `json:"element_type"`

	// Reason explains why the element was lost.
	Reason string `json:"reason"`

	// OriginalValue is the value that was lost (optional).
	OriginalValue interface{} `json:"original_value,omitempty"`
}

// LossReport documents the fidelity of a conversion.
type LossReport struct {
	// SourceFormat is the format being converted from (e.g., "text").
	SourceFormat string `json:"source_format"`

	// TargetFormat is the format being converted to (e.g., "document", "markup").
	TargetFormat string `json:"target_format"`

	// LossClass is the overall fidelity classification.
	LossClass LossClass `json:"loss_class"`

	// LostElements lists specific pieces of data that were lost.
	LostElements []LostElement `json:"lost_elements,omitempty"`

	// Warnings contains non-fatal issues encountered during conversion.
	Warnings []string `json:"warnings,omitempty"`
}

// NewLossReport creates a lossless report for a conversion.
func NewLossReport(source, target string) *LossReport {
	return &LossReport{
		SourceFormat: source,
		TargetFormat: target,
		LossClass:    LossL0,
	}
}

// HasLoss returns true if any elements were lost.
func (r *LossReport) HasLoss() bool {
	return len(r.LostElements) > 0 || r.LossClass.Level() > 0
}

// Lose records a lost element and raises the loss class to at least class.
func (r *LossReport) Lose(class LossClass, element LostElement) {
	r.LostElements = append(r.LostElements, element)
	r.Escalate(class)
}

// Escalate raises the loss class to at least class.
func (r *LossReport) Escalate(class LossClass) {
	if class.Level() > r.LossClass.Level() {
		r.LossClass = class
	}
}

// AddWarning adds a warning to the report.
func (r *LossReport) AddWarning(warning string) {
	r.Warnings = append(r.Warnings, warning)
}
