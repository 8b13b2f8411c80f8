package validate

import (
	"github.com/paiban/shiftplan/pkg/catalog"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
	"github.com/paiban/shiftplan/pkg/scheduling/temporal"
)

// restDaysWithStaffValidator checks each {peer, minRestDays, period}
// constraint of the target staff member: the number of days in the period
// on which neither the target nor the peer works must meet the minimum.
type restDaysWithStaffValidator struct{}

func (restDaysWithStaffValidator) Kind() model.ConstraintType {
	return model.ConstraintRestDaysWithStaff
}

func (restDaysWithStaffValidator) Validate(ctx *Context) []model.ConstraintViolation {
	var out []model.ConstraintViolation

	for _, rc := range ctx.TargetStaff.Constraints.RestDaysWithStaff {
		peer, ok := ctx.Staff(rc.Peer)
		if !ok {
			continue
		}

		start, end := temporal.PeriodBounds(rc.Period, ctx.TargetOccurrence.Start)
		days := temporal.Days(start, end)

		sharedRest := 0
		for _, d := range days {
			if !ctx.staffWorksOnDay(ctx.TargetStaff.ID, d) && !ctx.staffWorksOnDay(peer.ID, d) {
				sharedRest++
			}
		}
		if ctx.Mode == ModeCheckAssignment {
			sharedRest--
		}

		if sharedRest >= rc.MinRestDays {
			continue
		}

		periodLabel := ctx.Formatter(catalog.PeriodKey(string(rc.Period)), map[string]any{
			"date": ctx.TargetOccurrence.Start,
		})

		out = append(out, model.ConstraintViolation{
			ID:        model.NewID(),
			StaffID:   ctx.TargetStaff.ID,
			StaffName: ctx.TargetStaff.Name,
			Type:      model.ConstraintRestDaysWithStaff,
			Severity:  model.SeverityError,
			Message: ctx.Formatter(catalog.KeyViolationRestDaysWithStaff, map[string]any{
				"staffName": ctx.TargetStaff.Name,
				"peerName":  peer.Name,
				"current":   sharedRest,
				"limit":     rc.MinRestDays,
				"period":    periodLabel,
			}),
			Details: model.ViolationDetails{
				ConstraintName:   "rest_days_with_staff",
				CurrentValue:     floatPtr(float64(sharedRest)),
				LimitValue:       floatPtr(float64(rc.MinRestDays)),
				Period:           periodLabel,
				RelatedStaffID:   peer.ID,
				RelatedStaffName: peer.Name,
			},
		})
	}

	return out
}
