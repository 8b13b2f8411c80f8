package validate

import (
	"github.com/paiban/shiftplan/pkg/catalog"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
	"github.com/paiban/shiftplan/pkg/scheduling/temporal"
)

// consecutiveRestDaysValidator checks each consecutiveRestDays constraint
// of the target staff member: the longest run of adjacent rest days in the
// period must meet the minimum.
type consecutiveRestDaysValidator struct{}

func (consecutiveRestDaysValidator) Kind() model.ConstraintType {
	return model.ConstraintConsecutiveRestDays
}

func (consecutiveRestDaysValidator) Validate(ctx *Context) []model.ConstraintViolation {
	var out []model.ConstraintViolation

	for _, rc := range ctx.TargetStaff.Constraints.ConsecutiveRestDays {
		start, end := temporal.PeriodBounds(rc.Period, ctx.TargetOccurrence.Start)
		days := temporal.Days(start, end)

		workDay := make(map[string]bool, len(days))
		for _, o := range ctx.AllOccurrences {
			if !o.HasStaff(ctx.TargetStaff.ID) {
				continue
			}
			if o.Start.Before(start) || o.Start.After(end) {
				continue
			}
			workDay[temporal.StartOfDay(o.Start).Format(dayKeyLayout)] = true
		}
		if ctx.Mode == ModeCheckAssignment {
			workDay[temporal.StartOfDay(ctx.TargetOccurrence.Start).Format(dayKeyLayout)] = true
		}

		longest, run := 0, 0
		for _, d := range days {
			if workDay[d.Format(dayKeyLayout)] {
				run = 0
				continue
			}
			run++
			if run > longest {
				longest = run
			}
		}

		if longest >= rc.MinConsecutiveDays {
			continue
		}

		periodLabel := ctx.Formatter(catalog.PeriodKey(string(rc.Period)), map[string]any{
			"date": ctx.TargetOccurrence.Start,
		})

		out = append(out, model.ConstraintViolation{
			ID:        model.NewID(),
			StaffID:   ctx.TargetStaff.ID,
			StaffName: ctx.TargetStaff.Name,
			Type:      model.ConstraintConsecutiveRestDays,
			Severity:  model.SeverityError,
			Message: ctx.Formatter(catalog.KeyViolationConsecutiveRestDays, map[string]any{
				"staffName": ctx.TargetStaff.Name,
				"current":   longest,
				"limit":     rc.MinConsecutiveDays,
				"period":    periodLabel,
			}),
			Details: model.ViolationDetails{
				ConstraintName: "consecutive_rest_days",
				CurrentValue:   floatPtr(float64(longest)),
				LimitValue:     floatPtr(float64(rc.MinConsecutiveDays)),
				Period:         periodLabel,
			},
		})
	}

	return out
}
