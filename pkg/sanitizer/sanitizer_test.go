package sanitizer

import "testing"

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"only spaces", "   ", ""},
		{"leading and trailing", "  Ravi Kumar  ", "Ravi Kumar"},
		{"internal runs", "Ravi \t  Kumar", "Ravi Kumar"},
		{"already clean", "Ravi Kumar", "Ravi Kumar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimAndNormalize(tt.input); got != tt.want {
				t.Errorf("TrimAndNormalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeVehicleNumber(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase with spaces", "ka 01 ab 1234", "KA01AB1234"},
		{"mixed case", "Ka01aB1234", "KA01AB1234"},
		{"already canonical", "KA01AB1234", "KA01AB1234"},
		{"tabs", "KA\t01 AB 1234", "KA01AB1234"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeVehicleNumber(tt.input); got != tt.want {
				t.Errorf("NormalizeVehicleNumber(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeVehicleNumber_Idempotent(t *testing.T) {
	input := " ka 01 ab 1234 "
	once := NormalizeVehicleNumber(input)
	twice := NormalizeVehicleNumber(once)
	if once != twice {
		t.Errorf("not idempotent: %q != %q", once, twice)
	}
}

func TestNormalizeServiceTypes(t *testing.T) {
	got := NormalizeServiceTypes([]string{" Oil Change ", "", "oil change", "Brake Inspection"})
	want := []string{"Oil Change", "Brake Inspection"}

	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"indian mobile", "98765 43210", "+919876543210"},
		{"already e164", "+919876543210", "+919876543210"},
		{"garbage", "not-a-phone", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePhone(tt.input); got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
