package listpage

import (
	"context"
	"fmt"
)

// Kind is how a confirmation request is presented.
type Kind string

const (
	KindConfirm Kind = "confirm"
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Phase names the gate's current variant.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseAwaiting  Phase = "awaiting_confirmation"
	PhaseExecuting Phase = "executing"
	PhaseOutcome   Phase = "outcome"
)

// Notice is the title and message of an informational request.
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Action is the remote mutation bound to a confirmation. The returned notice
// is shown on success.
type Action func(ctx context.Context) (Notice, error)

// Request is what the gate displays.
type Request struct {
	Kind        Kind
	Title       string
	Message     string
	ConfirmText string
	CancelText  string
	Action      Action
	// Failure is shown if Action returns an error.
	Failure Notice
}

// GateState is one of Idle, AwaitingConfirmation, Executing or Outcome.
type GateState interface {
	Phase() Phase
	gateState()
}

type Idle struct{}

type AwaitingConfirmation struct{ Request Request }

type Executing struct{ Request Request }

type Outcome struct{ Request Request }

func (Idle) Phase() Phase                 { return PhaseIdle }
func (AwaitingConfirmation) Phase() Phase { return PhaseAwaiting }
func (Executing) Phase() Phase            { return PhaseExecuting }
func (Outcome) Phase() Phase              { return PhaseOutcome }

func (Idle) gateState()                 {}
func (AwaitingConfirmation) gateState() {}
func (Executing) gateState()            {}
func (Outcome) gateState()              {}

var genericFailure = Notice{
	Title:   "Something went wrong",
	Message: "The change could not be completed. Please try again.",
}

// Gate is the single-slot confirmation state machine. At most one request is
// live; opening another replaces it unless one is executing.
type Gate struct {
	state GateState
}

func NewGate() Gate {
	return Gate{state: Idle{}}
}

func (g Gate) State() GateState {
	if g.state == nil {
		return Idle{}
	}
	return g.state
}

func (g Gate) Phase() Phase { return g.State().Phase() }

// Busy is true while a confirmed action runs.
func (g Gate) Busy() bool { return g.Phase() == PhaseExecuting }

func (g *Gate) invalid(event string) error {
	return fmt.Errorf("%w: %s while %s", ErrInvalidTransition, event, g.Phase())
}

// OpenConfirm shows a confirm request with its bound action.
func (g *Gate) OpenConfirm(req Request) error {
	if g.Busy() {
		return ErrGateBusy
	}
	if req.Action == nil {
		return fmt.Errorf("%w: confirm request without an action", ErrInvalidTransition)
	}
	req.Kind = KindConfirm
	g.state = AwaitingConfirmation{Request: req}
	return nil
}

// Cancel drops a pending confirmation without running it.
func (g *Gate) Cancel() error {
	if _, ok := g.State().(AwaitingConfirmation); !ok {
		return g.invalid("cancel")
	}
	g.state = Idle{}
	return nil
}

// Confirm moves to Executing and hands back the action to run.
func (g *Gate) Confirm() (Action, error) {
	awaiting, ok := g.State().(AwaitingConfirmation)
	if !ok {
		return nil, g.invalid("confirm")
	}
	g.state = Executing{Request: awaiting.Request}
	return awaiting.Request.Action, nil
}

// Settle records the result of the executing action. Success and failure
// both end in Outcome so the user always sees how it went.
func (g *Gate) Settle(notice Notice, err error) error {
	executing, ok := g.State().(Executing)
	if !ok {
		return g.invalid("settle")
	}

	if err != nil {
		failure := executing.Request.Failure
		if failure == (Notice{}) {
			failure = genericFailure
		}
		g.state = Outcome{Request: Request{Kind: KindError, Title: failure.Title, Message: failure.Message}}
		return nil
	}
	g.state = Outcome{Request: Request{Kind: KindSuccess, Title: notice.Title, Message: notice.Message}}
	return nil
}

// Notify shows an informational request directly, skipping confirmation.
func (g *Gate) Notify(kind Kind, notice Notice) error {
	if g.Busy() {
		return ErrGateBusy
	}
	if kind == KindConfirm {
		return fmt.Errorf("%w: notify with kind %s", ErrInvalidTransition, kind)
	}
	g.state = Outcome{Request: Request{Kind: kind, Title: notice.Title, Message: notice.Message}}
	return nil
}

// Dismiss closes an outcome. Dismissing a pending confirmation cancels it.
func (g *Gate) Dismiss() error {
	switch g.State().(type) {
	case Outcome, AwaitingConfirmation:
		g.state = Idle{}
		return nil
	default:
		return g.invalid("dismiss")
	}
}

// Run executes an action, turning a panic into an error so the gate still
// reaches Outcome.
func (a Action) Run(ctx context.Context) (notice Notice, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("action panicked: %v", r)
		}
	}()
	return a(ctx)
}
