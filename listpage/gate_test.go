package listpage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okAction(ctx context.Context) (Notice, error) {
	return Notice{Title: "Done", Message: "It worked."}, nil
}

func confirmRequest() Request {
	return Request{
		Kind:        KindInfo, // overridden to confirm
		Title:       "Delete task",
		Message:     "Sure?",
		ConfirmText: "Delete",
		Action:      okAction,
		Failure:     Notice{Title: "Could not delete task"},
	}
}

func TestGate_ConfirmFlow(t *testing.T) {
	g := NewGate()
	assert.Equal(t, PhaseIdle, g.Phase())

	require.NoError(t, g.OpenConfirm(confirmRequest()))
	awaiting, ok := g.State().(AwaitingConfirmation)
	require.True(t, ok)
	assert.Equal(t, KindConfirm, awaiting.Request.Kind)

	action, err := g.Confirm()
	require.NoError(t, err)
	assert.True(t, g.Busy())

	notice, err := action.Run(context.Background())
	require.NoError(t, g.Settle(notice, err))

	outcome, ok := g.State().(Outcome)
	require.True(t, ok)
	assert.Equal(t, KindSuccess, outcome.Request.Kind)
	assert.Equal(t, "Done", outcome.Request.Title)

	require.NoError(t, g.Dismiss())
	assert.Equal(t, PhaseIdle, g.Phase())
}

func TestGate_SettleFailureUsesFailureNotice(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.OpenConfirm(confirmRequest()))
	_, err := g.Confirm()
	require.NoError(t, err)

	require.NoError(t, g.Settle(Notice{}, errors.New("boom")))
	outcome := g.State().(Outcome)
	assert.Equal(t, KindError, outcome.Request.Kind)
	assert.Equal(t, "Could not delete task", outcome.Request.Title)
}

func TestGate_SettleFailureWithoutNoticeIsGeneric(t *testing.T) {
	g := NewGate()
	req := confirmRequest()
	req.Failure = Notice{}
	require.NoError(t, g.OpenConfirm(req))
	_, _ = g.Confirm()

	require.NoError(t, g.Settle(Notice{}, errors.New("boom")))
	assert.Equal(t, genericFailure.Title, g.State().(Outcome).Request.Title)
}

func TestGate_InvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(g *Gate)
		event func(g *Gate) error
	}{
		{"confirm while idle", func(*Gate) {}, func(g *Gate) error { _, err := g.Confirm(); return err }},
		{"cancel while idle", func(*Gate) {}, (*Gate).Cancel},
		{"dismiss while idle", func(*Gate) {}, (*Gate).Dismiss},
		{"settle while idle", func(*Gate) {}, func(g *Gate) error { return g.Settle(Notice{}, nil) }},
		{"cancel while executing", executingGate, (*Gate).Cancel},
		{"dismiss while executing", executingGate, (*Gate).Dismiss},
		{"confirm while executing", executingGate, func(g *Gate) error { _, err := g.Confirm(); return err }},
		{"cancel an outcome", outcomeGate, (*Gate).Cancel},
		{"confirm an outcome", outcomeGate, func(g *Gate) error { _, err := g.Confirm(); return err }},
		{"notify with confirm kind", func(*Gate) {}, func(g *Gate) error { return g.Notify(KindConfirm, Notice{}) }},
		{"confirm request without action", func(*Gate) {}, func(g *Gate) error { return g.OpenConfirm(Request{Title: "x"}) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate()
			tt.setup(&g)
			before := g.Phase()
			assert.ErrorIs(t, tt.event(&g), ErrInvalidTransition)
			assert.Equal(t, before, g.Phase(), "phase unchanged")
		})
	}
}

func executingGate(g *Gate) {
	_ = g.OpenConfirm(confirmRequest())
	_, _ = g.Confirm()
}

func outcomeGate(g *Gate) {
	_ = g.Notify(KindInfo, Notice{Title: "hi"})
}

func TestGate_BusyRefusesNewRequests(t *testing.T) {
	g := NewGate()
	executingGate(&g)

	assert.ErrorIs(t, g.OpenConfirm(confirmRequest()), ErrGateBusy)
	assert.ErrorIs(t, g.Notify(KindInfo, Notice{Title: "later"}), ErrGateBusy)
	assert.Equal(t, PhaseExecuting, g.Phase())
}

func TestGate_NewRequestReplacesPendingOne(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.OpenConfirm(confirmRequest()))

	second := confirmRequest()
	second.Title = "Complete task"
	require.NoError(t, g.OpenConfirm(second))
	assert.Equal(t, "Complete task", g.State().(AwaitingConfirmation).Request.Title)

	require.NoError(t, g.Notify(KindSuccess, Notice{Title: "Saved"}))
	assert.Equal(t, PhaseOutcome, g.Phase())
}

func TestGate_DismissPendingActsAsCancel(t *testing.T) {
	g := NewGate()
	require.NoError(t, g.OpenConfirm(confirmRequest()))
	require.NoError(t, g.Dismiss())
	assert.Equal(t, PhaseIdle, g.Phase())
}

func TestAction_RunRecoversPanic(t *testing.T) {
	var a Action = func(ctx context.Context) (Notice, error) {
		panic("nil map")
	}
	_, err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil map")
}

func TestGateView(t *testing.T) {
	g := NewGate()
	assert.Equal(t, GateView{Phase: PhaseIdle}, gateView(g))

	require.NoError(t, g.OpenConfirm(confirmRequest()))
	v := gateView(g)
	assert.True(t, v.ShowCancel)
	assert.Equal(t, "Delete", v.ConfirmText)
	assert.Equal(t, KindConfirm, v.Kind)

	_, err := g.Confirm()
	require.NoError(t, err)
	v = gateView(g)
	assert.True(t, v.Busy)
	assert.False(t, v.ShowCancel, "no cancel while the action runs")
	require.NoError(t, g.Settle(Notice{Title: "Done"}, nil))
	require.NoError(t, g.Dismiss())

	require.NoError(t, g.OpenConfirm(confirmRequest()))
	require.NoError(t, g.Cancel())
	require.NoError(t, g.Notify(KindInfo, Notice{Title: "FYI"}))
	v = gateView(g)
	assert.False(t, v.ShowCancel)
	assert.Equal(t, "OK", v.ConfirmText)
}
