package validate

import (
	"testing"
	"time"

	"github.com/paiban/shiftplan/pkg/scheduling/model"
)

func d(y int, m time.Month, day int) time.Time {
	return time.Date(y, m, day, 9, 0, 0, 0, time.UTC)
}

func occ(id model.OccurrenceID, start time.Time, assigned ...model.StaffID) model.ShiftOccurrence {
	return model.ShiftOccurrence{
		ID:            id,
		Start:         start,
		End:           start.Add(8 * time.Hour),
		AssignedStaff: assigned,
	}
}

func TestBlockedTimeValidator(t *testing.T) {
	staff := model.StaffMember{
		ID:   "s1",
		Name: "Ana",
		BlockedTimes: []model.BlockedTime{
			{Start: d(2026, 8, 3), End: d(2026, 8, 3).Add(10 * time.Hour)},
		},
	}
	target := occ("o1", d(2026, 8, 3))

	ctx := NewContext(staff, target, []model.StaffMember{staff}, []model.ShiftOccurrence{target}, d(2026, 8, 3), ModeCheckAssignment, nil)
	violations := blockedTimeValidator{}.Validate(ctx)
	if len(violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(violations))
	}
	if violations[0].Type != model.ConstraintBlockedTime {
		t.Errorf("violation type = %v, want %v", violations[0].Type, model.ConstraintBlockedTime)
	}

	clearCtx := NewContext(staff, occ("o2", d(2026, 8, 10)), []model.StaffMember{staff}, nil, d(2026, 8, 10), ModeCheckAssignment, nil)
	if got := blockedTimeValidator{}.Validate(clearCtx); len(got) != 0 {
		t.Errorf("outside blocked window: got %d violations, want 0", len(got))
	}
}

func TestIncompatibleStaffValidator(t *testing.T) {
	a := model.StaffMember{ID: "a", Name: "Ana", Constraints: model.StaffConstraints{IncompatibleWith: []model.StaffID{"b"}}}
	b := model.StaffMember{ID: "b", Name: "Beto"}
	target := occ("o1", d(2026, 8, 3), "b")

	ctx := NewContext(a, target, []model.StaffMember{a, b}, []model.ShiftOccurrence{target}, d(2026, 8, 3), ModeCheckAssignment, nil)
	violations := incompatibleStaffValidator{}.Validate(ctx)
	if len(violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(violations))
	}
	if violations[0].Details.RelatedStaffID != "b" {
		t.Errorf("related staff id = %v, want b", violations[0].Details.RelatedStaffID)
	}
}

func TestIncompatibleStaffValidator_BidirectionalCheck(t *testing.T) {
	a := model.StaffMember{ID: "a", Name: "Ana"}
	b := model.StaffMember{ID: "b", Name: "Beto", Constraints: model.StaffConstraints{IncompatibleWith: []model.StaffID{"a"}}}
	target := occ("o1", d(2026, 8, 3), "b")

	ctx := NewContext(a, target, []model.StaffMember{a, b}, []model.ShiftOccurrence{target}, d(2026, 8, 3), ModeCheckAssignment, nil)
	if got := incompatibleStaffValidator{}.Validate(ctx); len(got) != 1 {
		t.Errorf("got %d violations, want 1 (b's list names a)", len(got))
	}
}

func TestShiftLimitValidator_DailyCapExceeded(t *testing.T) {
	one := 1
	staff := model.StaffMember{ID: "s1", Name: "Ana", Constraints: model.StaffConstraints{MaxShiftsPerDay: &one}}
	existing := occ("existing", d(2026, 8, 3), "s1")
	target := occ("target", d(2026, 8, 3))

	ctx := NewContext(staff, target, []model.StaffMember{staff}, []model.ShiftOccurrence{existing, target}, d(2026, 8, 3), ModeCheckAssignment, nil)
	v := newDailyShiftLimitValidator()
	violations := v.Validate(ctx)
	if len(violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(violations))
	}
	if *violations[0].Details.CurrentValue != 2 {
		t.Errorf("current = %v, want 2", *violations[0].Details.CurrentValue)
	}
}

func TestShiftLimitValidator_YearlyUnboundedByDefault(t *testing.T) {
	staff := model.StaffMember{ID: "s1", Name: "Ana"} // no MaxShiftsPerYear set
	target := occ("target", d(2026, 8, 3))

	ctx := NewContext(staff, target, []model.StaffMember{staff}, []model.ShiftOccurrence{target}, d(2026, 8, 3), ModeCheckAssignment, nil)
	v := newYearlyShiftLimitValidator()
	if got := v.Validate(ctx); len(got) != 0 {
		t.Errorf("unbounded yearly cap: got %d violations, want 0", len(got))
	}
}

func TestRestDaysWithStaffValidator(t *testing.T) {
	target := model.StaffMember{
		ID:   "s1",
		Name: "Ana",
		Constraints: model.StaffConstraints{
			RestDaysWithStaff: []model.RestDaysWithStaff{
				{Peer: "s2", MinRestDays: 6, Period: model.PeriodWeek},
			},
		},
	}
	peer := model.StaffMember{ID: "s2", Name: "Beto"}

	// Both work every day of the week: zero shared rest days, well below 6.
	targetOcc := occ("o1", d(2026, 8, 3), "s1", "s2")
	var all []model.ShiftOccurrence
	for i := 0; i < 7; i++ {
		day := d(2026, 8, 2).AddDate(0, 0, i)
		all = append(all, occ(model.OccurrenceID("o"+string(rune('a'+i))), day, "s1", "s2"))
	}

	ctx := NewContext(target, targetOcc, []model.StaffMember{target, peer}, all, d(2026, 8, 3), ModeValidateExisting, nil)
	violations := restDaysWithStaffValidator{}.Validate(ctx)
	if len(violations) != 1 {
		t.Fatalf("got %d violations, want 1", len(violations))
	}
}

func TestConsecutiveRestDaysValidator(t *testing.T) {
	target := model.StaffMember{
		ID:   "s1",
		Name: "Ana",
		Constraints: model.StaffConstraints{
			ConsecutiveRestDays: []model.ConsecutiveRestDays{
				{MinConsecutiveDays: 2, Period: model.PeriodWeek},
			},
		},
	}

	// Working every day of the week leaves zero rest days.
	var all []model.ShiftOccurrence
	for i := 0; i < 7; i++ {
		day := d(2026, 8, 2).AddDate(0, 0, i)
		all = append(all, occ(model.OccurrenceID("o"+string(rune('a'+i))), day, "s1"))
	}
	targetOcc := all[3]

	ctx := NewContext(target, targetOcc, []model.StaffMember{target}, all, d(2026, 8, 3), ModeValidateExisting, nil)
	if got := consecutiveRestDaysValidator{}.Validate(ctx); len(got) != 1 {
		t.Errorf("got %d violations, want 1", len(got))
	}
}

func TestManager_SortsBySeverity(t *testing.T) {
	m := NewManager()

	one := 1
	staff := model.StaffMember{
		ID:   "s1",
		Name: "Ana",
		Constraints: model.StaffConstraints{
			MaxShiftsPerDay: &one,
			IncompatibleWith: []model.StaffID{"s2"},
		},
		BlockedTimes: []model.BlockedTime{
			{Start: d(2026, 8, 3), End: d(2026, 8, 3).Add(10 * time.Hour)},
		},
	}
	peer := model.StaffMember{ID: "s2", Name: "Beto"}
	existing := occ("existing", d(2026, 8, 3), "s1")
	target := occ("target", d(2026, 8, 3), "s2")

	ctx := NewContext(staff, target, []model.StaffMember{staff, peer}, []model.ShiftOccurrence{existing, target}, d(2026, 8, 3), ModeCheckAssignment, nil)
	violations := m.Validate(ctx)
	if len(violations) < 2 {
		t.Fatalf("got %d violations, want at least 2", len(violations))
	}
	for i := 1; i < len(violations); i++ {
		if model.SeverityLess(violations[i].Severity, violations[i-1].Severity) {
			t.Errorf("violations not sorted by severity at index %d", i)
		}
	}
}

func TestHasErrorSeverity(t *testing.T) {
	none := []model.ConstraintViolation{{Severity: model.SeverityWarning}}
	if HasErrorSeverity(none) {
		t.Error("HasErrorSeverity() = true, want false (no error-severity entries)")
	}

	some := []model.ConstraintViolation{{Severity: model.SeverityWarning}, {Severity: model.SeverityError}}
	if !HasErrorSeverity(some) {
		t.Error("HasErrorSeverity() = false, want true")
	}
}
