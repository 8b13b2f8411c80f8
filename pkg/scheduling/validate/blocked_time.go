package validate

import (
	"github.com/paiban/shiftplan/pkg/catalog"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
	"github.com/paiban/shiftplan/pkg/scheduling/temporal"
)

// blockedTimeValidator reports an error for any blocked-time interval of
// the target staff member overlapping the target occurrence.
type blockedTimeValidator struct{}

func (blockedTimeValidator) Kind() model.ConstraintType { return model.ConstraintBlockedTime }

func (blockedTimeValidator) Validate(ctx *Context) []model.ConstraintViolation {
	var out []model.ConstraintViolation

	occInterval := temporal.Interval{Start: ctx.TargetOccurrence.Start, End: ctx.TargetOccurrence.End}
	from := ctx.EvaluationDate.AddDate(-1, 0, 0)
	to := ctx.EvaluationDate.AddDate(1, 0, 0)

	for _, bt := range ctx.TargetStaff.BlockedTimes {
		overlap := false
		for _, iv := range temporal.ExpandBlockedTime(bt, from, to) {
			if iv.Overlaps(occInterval) {
				overlap = true
				break
			}
		}
		if !overlap {
			continue
		}
		out = append(out, model.ConstraintViolation{
			ID:        model.NewID(),
			StaffID:   ctx.TargetStaff.ID,
			StaffName: ctx.TargetStaff.Name,
			Type:      model.ConstraintBlockedTime,
			Severity:  model.SeverityError,
			Message: ctx.Formatter(catalog.KeyViolationBlockedTime, map[string]any{
				"staffName": ctx.TargetStaff.Name,
			}),
			Details: model.ViolationDetails{ConstraintName: "blocked_time"},
		})
	}

	return out
}
