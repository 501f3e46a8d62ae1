package bot

import "shopbot/internal/domain"

// Step enumerates the conversational states. One inbound message advances
// exactly one step.
type Step int

const (
	StepIdle Step = iota
	StepAddTitle
	StepAddDescription
	StepAddPrice
	StepAddSizes
	StepAddQuantity
	StepAddSizeQuantities
	StepAddPhotos
	StepEditSelect
	StepEditField
	StepEditPhotos
	StepDeleteSelect
	StepMoveSelect
	StepMoveTarget
)

// Message is one inbound chat event, already stripped of transport detail.
type Message struct {
	ChatID  int64
	Text    string
	PhotoID string
}

// Session is the transient per-chat flow state. It exists only while a
// flow is in progress and is discarded on completion or /cancel.
type Session struct {
	Step Step

	// product creation
	Draft      domain.Product
	SizeCursor int

	// editing
	EditID    int64
	EditField string
	Photos    []string

	// reorder: source index captured in the first phase
	MoveFrom int
}
