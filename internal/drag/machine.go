package drag

import "sync"

// Outcome reports what Drop did with the resolved intent.
type Outcome int

const (
	OutcomeNoop Outcome = iota
	OutcomeDispatched
	OutcomeDeclined
	// OutcomeNeedsConfirm means the intent needs consent and the machine has
	// no Confirmer. Pass it to Commit once the user accepts.
	OutcomeNeedsConfirm
)

// Confirmer asks the user a yes/no question.
type Confirmer func(prompt string) bool

// Machine tracks one gesture at a time: idle, then dragging a payload, then
// idle again on drop or cancel.
type Machine struct {
	mu     sync.Mutex
	active *Payload

	context  func() Context
	confirm  Confirmer
	dispatch func(Intent)
}

// NewMachine wires a machine. context is read at drop time. dispatch receives
// every accepted intent and must not block; the machine never waits for the
// write to land.
func NewMachine(context func() Context, confirm Confirmer, dispatch func(Intent)) *Machine {
	return &Machine{context: context, confirm: confirm, dispatch: dispatch}
}

func (m *Machine) Start(p Payload) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = &p
}

func (m *Machine) Active() (Payload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return Payload{}, false
	}
	return *m.active, true
}

// Cancel aborts the gesture without side effects.
func (m *Machine) Cancel() {
	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()
}

// Drop ends the gesture on target (nil when dropped outside every target).
// The machine is idle again before Drop returns, whatever the outcome.
func (m *Machine) Drop(target *Target) (Intent, Outcome) {
	m.mu.Lock()
	p := m.active
	m.active = nil
	m.mu.Unlock()

	if p == nil {
		return none(), OutcomeNoop
	}
	in := Resolve(*p, target, m.context())
	if in.Noop() {
		return in, OutcomeNoop
	}
	if in.Confirm != "" {
		if m.confirm == nil {
			return in, OutcomeNeedsConfirm
		}
		if !m.confirm(in.Confirm) {
			return in, OutcomeDeclined
		}
	}
	m.Commit(in)
	return in, OutcomeDispatched
}

// Commit dispatches an intent the user has already agreed to.
func (m *Machine) Commit(in Intent) {
	if in.Noop() || m.dispatch == nil {
		return
	}
	m.dispatch(in)
}

func (o Outcome) String() string {
	switch o {
	case OutcomeDispatched:
		return "dispatched"
	case OutcomeDeclined:
		return "declined"
	case OutcomeNeedsConfirm:
		return "needs-confirm"
	}
	return "noop"
}
