package model

import "testing"

func TestOrderStateTransitions(t *testing.T) {
	tests := []struct {
		state     OrderState
		canCancel bool
		canDelete bool
	}{
		{OrderRequested, true, false},
		{OrderPreparing, false, true},
		{OrderSent, false, true},
		{OrderReceived, false, true},
		{OrderCancelled, false, true},
	}
	for _, tt := range tests {
		if got := tt.state.CanCancel(); got != tt.canCancel {
			t.Errorf("%s.CanCancel() = %v, want %v", tt.state, got, tt.canCancel)
		}
		if got := tt.state.CanDelete(); got != tt.canDelete {
			t.Errorf("%s.CanDelete() = %v, want %v", tt.state, got, tt.canDelete)
		}
	}
}

func TestOrderStateLabel(t *testing.T) {
	tests := []struct {
		state OrderState
		want  string
	}{
		{OrderRequested, "Solicitado"},
		{OrderPreparing, "Preparación"},
		{OrderSent, "Enviado"},
		{OrderReceived, "Recibido"},
		{OrderCancelled, "Cancelado"},
		{OrderState("X"), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.Label(); got != tt.want {
			t.Errorf("Label(%q) = %q, want %q", string(tt.state), got, tt.want)
		}
	}
}
