package model

import "testing"

func TestParseBookingStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    BookingStatus
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"Pending", StatusPending, false},
		{" CONFIRMED ", StatusConfirmed, false},
		{"in_progress", StatusInProgress, false},
		{"completed", StatusCompleted, false},
		{"cancelled", StatusCancelled, false},
		{"done", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBookingStatus(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseBookingStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCanTransitionTo(t *testing.T) {
	allowed := []struct{ from, to BookingStatus }{
		{StatusPending, StatusConfirmed},
		{StatusPending, StatusArrived},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusArrived},
		{StatusConfirmed, StatusCancelled},
		{StatusArrived, StatusInProgress},
		{StatusArrived, StatusCancelled},
		{StatusInProgress, StatusCompleted},
		{StatusInProgress, StatusCancelled},
	}
	for _, tt := range allowed {
		if !tt.from.CanTransitionTo(tt.to) {
			t.Errorf("expected %s -> %s to be allowed", tt.from, tt.to)
		}
	}

	forbidden := []struct{ from, to BookingStatus }{
		{StatusPending, StatusCompleted},
		{StatusPending, StatusInProgress},
		{StatusConfirmed, StatusInProgress},
		{StatusConfirmed, StatusCompleted},
		{StatusArrived, StatusCompleted},
		{StatusArrived, StatusPending},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusPending},
		{StatusCancelled, StatusPending},
		{StatusCancelled, StatusArrived},
	}
	for _, tt := range forbidden {
		if tt.from.CanTransitionTo(tt.to) {
			t.Errorf("expected %s -> %s to be rejected", tt.from, tt.to)
		}
	}
}

func TestTerminalStates(t *testing.T) {
	for _, s := range []BookingStatus{StatusCompleted, StatusCancelled} {
		if !s.IsTerminal() {
			t.Errorf("expected %s to be terminal", s)
		}
	}
	for _, s := range []BookingStatus{StatusPending, StatusConfirmed, StatusArrived, StatusInProgress} {
		if s.IsTerminal() {
			t.Errorf("expected %s to be non-terminal", s)
		}
	}
}

func TestActiveStatusesExcludeCancelled(t *testing.T) {
	for _, s := range ActiveStatuses() {
		if s == StatusCancelled {
			t.Fatal("cancelled must not occupy a slot")
		}
	}
	if len(ActiveStatuses()) != 5 {
		t.Errorf("expected 5 active statuses, got %d", len(ActiveStatuses()))
	}
}
