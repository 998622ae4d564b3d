package drag

import (
	"time"

	"timeruler/internal/model"
)

// PayloadKind names what is being dragged.
type PayloadKind string

const (
	PayloadTask       PayloadKind = "task"
	PayloadBlock      PayloadKind = "block"
	PayloadGroup      PayloadKind = "group"
	PayloadNow        PayloadKind = "now"
	PayloadNewButton  PayloadKind = "new_button"
	PayloadTaskLength PayloadKind = "task-length"
	PayloadTime       PayloadKind = "time"
	PayloadDue        PayloadKind = "due"
)

func (k PayloadKind) Valid() bool {
	switch k {
	case PayloadTask, PayloadBlock, PayloadGroup, PayloadNow, PayloadNewButton,
		PayloadTaskLength, PayloadTime, PayloadDue:
		return true
	}
	return false
}

// Payload is the dragged entity. Which fields matter depends on Kind:
//   - task, task-length, due: TaskID
//   - block, group: Tasks (group also Path, its file-order key)
//   - time, task-length: Start, the timestamp the drag began at
type Payload struct {
	Kind PayloadKind `json:"kind"`
	// SourceID identifies the UI element the drag started on.
	SourceID string          `json:"sourceId,omitempty"`
	TaskID   string          `json:"taskId,omitempty"`
	Tasks    []string        `json:"tasks,omitempty"`
	Path     string          `json:"path,omitempty"`
	Start    *model.DateTime `json:"start,omitempty"`
}

type TargetKind string

const (
	// TargetSlot is a timeline or field slot; Fields carries the values it stands for.
	TargetSlot    TargetKind = "slot"
	TargetHeading TargetKind = "heading"
	TargetDelete  TargetKind = "delete"
	// TargetTask is another task; Fields carries the values to copy from it.
	TargetTask TargetKind = "task"
)

func (k TargetKind) Valid() bool {
	switch k {
	case TargetSlot, TargetHeading, TargetDelete, TargetTask:
		return true
	}
	return false
}

type Target struct {
	Kind TargetKind `json:"kind"`
	// ID identifies the UI element that received the drop.
	ID      string      `json:"id,omitempty"`
	Heading string      `json:"heading,omitempty"`
	Fields  model.Patch `json:"fields"`
}

func (t Target) fieldBearing() bool { return t.Kind == TargetSlot || t.Kind == TargetTask }

type IntentKind string

const (
	IntentNone    IntentKind = "none"
	IntentDraft   IntentKind = "draft"
	IntentReorder IntentKind = "reorder"
	IntentDelete  IntentKind = "delete"
	IntentShift   IntentKind = "shift"
	IntentPatch   IntentKind = "patch"
)

// Draft pre-fills the new-task form.
type Draft struct {
	Scheduled *model.DateTime `json:"scheduled,omitempty"`
	Length    *model.Length   `json:"length,omitempty"`
	Path      string          `json:"path,omitempty"`
	Heading   string          `json:"heading,omitempty"`
}

type Reorder struct {
	File   string `json:"file"`
	Before string `json:"before"`
}

// PatchOp applies one partial update to a set of ids.
type PatchOp struct {
	IDs   []string    `json:"ids"`
	Patch model.Patch `json:"patch"`
}

// Intent is the resolved meaning of a drop. When Confirm is non-empty the
// intent must not be applied until the user accepts the prompt.
type Intent struct {
	Kind    IntentKind `json:"kind"`
	Confirm string     `json:"confirm,omitempty"`

	Draft   *Draft    `json:"draft,omitempty"`
	Reorder *Reorder  `json:"reorder,omitempty"`
	Delete  []string  `json:"delete,omitempty"`
	Patches []PatchOp `json:"patches,omitempty"`

	// Delta is the shift applied by a now-marker drop.
	Delta time.Duration `json:"delta,omitempty"`
}

func (i Intent) Noop() bool { return i.Kind == "" || i.Kind == IntentNone }

func none() Intent { return Intent{Kind: IntentNone} }
