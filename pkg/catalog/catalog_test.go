package catalog

import "testing"

func TestDefault_KnownKeys(t *testing.T) {
	tests := []struct {
		name   string
		key    Key
		params map[string]any
	}{
		{"blocked time", KeyViolationBlockedTime, map[string]any{"staffName": "Ana"}},
		{"incompatible staff", KeyViolationIncompatibleStaff, map[string]any{"staffName": "Ana", "peerName": "Beto"}},
		{"daily limit", KeyViolationDailyShiftLimit, map[string]any{"staffName": "Ana", "current": 2, "limit": 1, "period": "day"}},
		{"understaffed", KeyStatusUnderstaffed, map[string]any{"current": 1, "required": 2}},
		{"properly staffed", KeyStatusProperlyStaffed, nil},
		{"not staffed", KeyStatusNotStaffed, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Default(tt.key, tt.params)
			if got == "" {
				t.Errorf("Default(%v) returned an empty string", tt.key)
			}
			if got == string(tt.key) {
				t.Errorf("Default(%v) fell through to the raw key, want a formatted message", tt.key)
			}
		})
	}
}

func TestDefault_UnknownKeyFallsBackToRawKey(t *testing.T) {
	got := Default(Key("violation.unheard_of"), nil)
	if got != "violation.unheard_of" {
		t.Errorf("Default(unknown) = %q, want the raw key", got)
	}
}

func TestPeriodKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"day", KeyPeriodDay},
		{"week", KeyPeriodWeek},
		{"month", KeyPeriodMonth},
		{"year", KeyPeriodYear},
		{"fortnight", KeyPeriodDay}, // unrecognized falls back to day
	}

	for _, tt := range tests {
		if got := PeriodKey(tt.in); got != tt.want {
			t.Errorf("PeriodKey(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
