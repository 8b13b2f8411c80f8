package model

import "testing"

func TestStaffConstraints_EffectiveCaps(t *testing.T) {
	two := 2

	tests := []struct {
		name string
		c    StaffConstraints
		want int
		get  func(StaffConstraints) int
	}{
		{"day default", StaffConstraints{}, DefaultMaxShiftsPerDay, StaffConstraints.EffectiveMaxShiftsPerDay},
		{"day override", StaffConstraints{MaxShiftsPerDay: &two}, 2, StaffConstraints.EffectiveMaxShiftsPerDay},
		{"week default", StaffConstraints{}, DefaultMaxShiftsPerWeek, StaffConstraints.EffectiveMaxShiftsPerWeek},
		{"week override", StaffConstraints{MaxShiftsPerWeek: &two}, 2, StaffConstraints.EffectiveMaxShiftsPerWeek},
		{"month default", StaffConstraints{}, DefaultMaxShiftsPerMonth, StaffConstraints.EffectiveMaxShiftsPerMonth},
		{"month override", StaffConstraints{MaxShiftsPerMonth: &two}, 2, StaffConstraints.EffectiveMaxShiftsPerMonth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.get(tt.c); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStaffConstraints_EffectiveMaxShiftsPerYear(t *testing.T) {
	cap := 200

	limit, bounded := StaffConstraints{}.EffectiveMaxShiftsPerYear()
	if bounded {
		t.Errorf("no cap set: want bounded=false, got limit=%d bounded=%v", limit, bounded)
	}

	limit, bounded = StaffConstraints{MaxShiftsPerYear: &cap}.EffectiveMaxShiftsPerYear()
	if !bounded || limit != 200 {
		t.Errorf("cap set: want limit=200 bounded=true, got limit=%d bounded=%v", limit, bounded)
	}
}

func TestStaffMember_HasTrait(t *testing.T) {
	s := StaffMember{TraitIDs: map[TraitID]bool{"rn": true}}

	if !s.HasTrait("rn") {
		t.Error("HasTrait(rn) = false, want true")
	}
	if s.HasTrait("cna") {
		t.Error("HasTrait(cna) = true, want false")
	}
}

func TestShiftOccurrence_HasStaff(t *testing.T) {
	o := ShiftOccurrence{AssignedStaff: []StaffID{"s1", "s2"}}

	if !o.HasStaff("s1") {
		t.Error("HasStaff(s1) = false, want true")
	}
	if o.HasStaff("s3") {
		t.Error("HasStaff(s3) = true, want false")
	}
}

func TestSeverityLess(t *testing.T) {
	tests := []struct {
		a, b Severity
		want bool
	}{
		{SeverityError, SeverityWarning, true},
		{SeverityWarning, SeverityError, false},
		{SeverityWarning, SeverityInfo, true},
		{SeverityError, SeverityError, false},
	}

	for _, tt := range tests {
		if got := SeverityLess(tt.a, tt.b); got != tt.want {
			t.Errorf("SeverityLess(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNewID_Unique(t *testing.T) {
	a := NewID()
	b := NewID()
	if a == "" || b == "" {
		t.Fatal("NewID returned an empty string")
	}
	if a == b {
		t.Errorf("NewID returned the same id twice: %s", a)
	}
}
