package wizard

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"

	"devcraft-studio/backend/internal/features/intake/domain"
)

// State constants stay untyped so they convert to statekit.StateID.
const (
	StateStep1      = "step-1"
	StateStep2      = "step-2"
	StateStep3      = "step-3"
	StateStep4      = "step-4"
	StateStep5      = "step-5"
	StateSubmitting = "submitting"
	StateSubmitted  = "submitted"
)

const (
	eventAdvance   = "advance"
	eventRetreat   = "retreat"
	eventSucceeded = "succeeded"
	eventFailed    = "failed"
)

var stepStates = [...]string{StateStep1, StateStep2, StateStep3, StateStep4, StateStep5}

// Phase is the externally visible wizard state.
type Phase string

const (
	PhaseStep       Phase = "step"
	PhaseSubmitting Phase = "submitting"
	PhaseSubmitted  Phase = "submitted"
)

type machineContext struct {
	SessionID string
}

// stepMachine owns the legal transitions between wizard states.
type stepMachine struct {
	interpreter *statekit.Interpreter[machineContext]
}

func newStepMachine(sessionID string) (*stepMachine, error) {
	builder := statekit.NewMachine[machineContext]("intake-wizard").
		WithInitial(statekit.StateID(StateStep1)).
		WithContext(machineContext{SessionID: sessionID})

	builder.State(StateStep1).
		On(eventAdvance).Target(StateStep2).
		Done()

	builder.State(StateStep2).
		On(eventAdvance).Target(StateStep3).
		On(eventRetreat).Target(StateStep1).
		Done()

	builder.State(StateStep3).
		On(eventAdvance).Target(StateStep4).
		On(eventRetreat).Target(StateStep2).
		Done()

	builder.State(StateStep4).
		On(eventAdvance).Target(StateStep5).
		On(eventRetreat).Target(StateStep3).
		Done()

	builder.State(StateStep5).
		On(eventAdvance).Target(StateSubmitting).
		On(eventRetreat).Target(StateStep4).
		Done()

	// Failure returns to the contact step so the same answers can be resent.
	builder.State(StateSubmitting).
		On(eventSucceeded).Target(StateSubmitted).
		On(eventFailed).Target(StateStep5).
		Done()

	builder.State(StateSubmitted).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build wizard state machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &stepMachine{interpreter: interpreter}, nil
}

// fire sends event and reports an error when the machine refused it.
func (m *stepMachine) fire(event string) error {
	before := m.current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if m.current() != before {
		return nil
	}
	return fmt.Errorf("%w: %q while in %q", ErrIllegalTransition, event, before)
}

func (m *stepMachine) current() string {
	return string(m.interpreter.State().Value)
}

// step returns the current step, or 0 when the wizard is past step 5.
func (m *stepMachine) step() domain.Step {
	cur := m.current()
	for i, s := range stepStates {
		if s == cur {
			return domain.Step(i + 1)
		}
	}
	return 0
}

func (m *stepMachine) phase() Phase {
	switch m.current() {
	case StateSubmitting:
		return PhaseSubmitting
	case StateSubmitted:
		return PhaseSubmitted
	default:
		return PhaseStep
	}
}
