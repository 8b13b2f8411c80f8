package validate

import (
	"github.com/paiban/shiftplan/pkg/catalog"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
)

// shiftLimitValidator implements the daily/weekly/monthly/yearly shift-cap
// checks; the four constraint kinds differ only in period and the default
// they apply, so one type parameterizes all of them.
type shiftLimitValidator struct {
	period model.Period
	kind   model.ConstraintType
	key    catalog.Key
	// limit extracts the (cap, bounded) pair for this period from a
	// staff member's constraints; bounded=false means "no cap applies".
	limit func(model.StaffConstraints) (limit int, bounded bool)
}

func (v shiftLimitValidator) Kind() model.ConstraintType { return v.kind }

func (v shiftLimitValidator) Validate(ctx *Context) []model.ConstraintViolation {
	limit, bounded := v.limit(ctx.TargetStaff.Constraints)
	if !bounded {
		return nil
	}

	excludeTarget := ctx.Mode == ModeCheckAssignment
	count := 0
	for _, o := range ctx.occurrencesInPeriod(v.period) {
		if excludeTarget && o.ID == ctx.TargetOccurrence.ID {
			continue
		}
		if o.HasStaff(ctx.TargetStaff.ID) {
			count++
		}
	}

	var current int
	if ctx.Mode == ModeCheckAssignment {
		current = count + 1
	} else {
		current = count
	}
	if current <= limit {
		return nil
	}

	periodLabel := ctx.Formatter(catalog.PeriodKey(string(v.period)), map[string]any{
		"date": ctx.TargetOccurrence.Start,
	})

	return []model.ConstraintViolation{{
		ID:        model.NewID(),
		StaffID:   ctx.TargetStaff.ID,
		StaffName: ctx.TargetStaff.Name,
		Type:      v.kind,
		Severity:  model.SeverityError,
		Message: ctx.Formatter(v.key, map[string]any{
			"staffName": ctx.TargetStaff.Name,
			"current":   current,
			"limit":     limit,
			"period":    periodLabel,
		}),
		Details: model.ViolationDetails{
			ConstraintName: string(v.kind),
			CurrentValue:   floatPtr(float64(current)),
			LimitValue:     floatPtr(float64(limit)),
			Period:         periodLabel,
		},
	}}
}

func newDailyShiftLimitValidator() shiftLimitValidator {
	return shiftLimitValidator{
		period: model.PeriodDay,
		kind:   model.ConstraintDailyShiftLimit,
		key:    catalog.KeyViolationDailyShiftLimit,
		limit: func(c model.StaffConstraints) (int, bool) {
			return c.EffectiveMaxShiftsPerDay(), true
		},
	}
}

func newWeeklyShiftLimitValidator() shiftLimitValidator {
	return shiftLimitValidator{
		period: model.PeriodWeek,
		kind:   model.ConstraintWeeklyShiftLimit,
		key:    catalog.KeyViolationWeeklyShiftLimit,
		limit: func(c model.StaffConstraints) (int, bool) {
			return c.EffectiveMaxShiftsPerWeek(), true
		},
	}
}

func newMonthlyShiftLimitValidator() shiftLimitValidator {
	return shiftLimitValidator{
		period: model.PeriodMonth,
		kind:   model.ConstraintMonthlyShiftLimit,
		key:    catalog.KeyViolationMonthlyShiftLimit,
		limit: func(c model.StaffConstraints) (int, bool) {
			return c.EffectiveMaxShiftsPerMonth(), true
		},
	}
}

func newYearlyShiftLimitValidator() shiftLimitValidator {
	return shiftLimitValidator{
		period: model.PeriodYear,
		kind:   model.ConstraintYearlyShiftLimit,
		key:    catalog.KeyViolationYearlyShiftLimit,
		limit:  model.StaffConstraints.EffectiveMaxShiftsPerYear,
	}
}
