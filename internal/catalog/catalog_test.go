package catalog

import "testing"

// TestInfo_TotalOverKnownLabels verifies every known label returns fully
// populated metadata.
func TestInfo_TotalOverKnownLabels(t *testing.T) {
	for _, label := range Labels {
		t.Run(label, func(t *testing.T) {
			m := Info(label)
			if m.Emoji == "" || m.Color == "" || m.Range == "" || m.HealthTip == "" {
				t.Errorf("Info(%q) has empty fields: %+v", label, m)
			}
		})
	}
}

// TestInfo_UnknownLabelFallsBackToModerate verifies the safe-default policy:
// unrecognized labels return the Moderate entry, and repeated lookups are
// identical.
func TestInfo_UnknownLabelFallsBackToModerate(t *testing.T) {
	want := Info(Moderate)
	for _, label := range []string{"", "unknown-label", "GOOD", "hazardous"} {
		got := Info(label)
		if got != want {
			t.Errorf("Info(%q) = %+v, want Moderate metadata %+v", label, got, want)
		}
		if again := Info(label); again != got {
			t.Errorf("Info(%q) not idempotent: %+v then %+v", label, got, again)
		}
	}
}

// TestMidpoint verifies the class-to-midpoint table and the unknown-label default.
func TestMidpoint(t *testing.T) {
	tests := []struct {
		label string
		want  int
	}{
		{Good, 25},
		{Moderate, 75},
		{UnhealthySensitive, 125},
		{Unhealthy, 175},
		{VeryUnhealthy, 250},
		{Hazardous, 350},
		{"unknown-label", 100},
		{"", 100},
	}
	for _, tt := range tests {
		if got := Midpoint(tt.label); got != tt.want {
			t.Errorf("Midpoint(%q) = %d, want %d", tt.label, got, tt.want)
		}
	}
}

// TestMidpoint_Deterministic verifies repeated calls return the same value.
func TestMidpoint_Deterministic(t *testing.T) {
	for _, label := range Labels {
		first := Midpoint(label)
		for i := 0; i < 3; i++ {
			if got := Midpoint(label); got != first {
				t.Fatalf("Midpoint(%q) changed between calls: %d then %d", label, first, got)
			}
		}
	}
}
