package validate

import (
	"github.com/paiban/shiftplan/pkg/catalog"
	"github.com/paiban/shiftplan/pkg/scheduling/model"
)

// incompatibleStaffValidator reports an error for every peer already
// assigned to the target occurrence whose incompatibleWith set includes
// the target (checked bidirectionally).
type incompatibleStaffValidator struct{}

func (incompatibleStaffValidator) Kind() model.ConstraintType { return model.ConstraintIncompatibleStaff }

func (incompatibleStaffValidator) Validate(ctx *Context) []model.ConstraintViolation {
	var out []model.ConstraintViolation

	target := ctx.TargetStaff
	targetIncompatible := toStaffSet(target.Constraints.IncompatibleWith)

	for _, otherID := range ctx.TargetOccurrence.AssignedStaff {
		if otherID == target.ID {
			continue
		}
		other, ok := ctx.Staff(otherID)
		if !ok {
			continue
		}
		otherIncompatible := toStaffSet(other.Constraints.IncompatibleWith)
		if !targetIncompatible[other.ID] && !otherIncompatible[target.ID] {
			continue
		}
		out = append(out, model.ConstraintViolation{
			ID:        model.NewID(),
			StaffID:   target.ID,
			StaffName: target.Name,
			Type:      model.ConstraintIncompatibleStaff,
			Severity:  model.SeverityError,
			Message: ctx.Formatter(catalog.KeyViolationIncompatibleStaff, map[string]any{
				"staffName": target.Name,
				"peerName":  other.Name,
			}),
			Details: model.ViolationDetails{
				ConstraintName:   "incompatible_staff",
				RelatedStaffID:   other.ID,
				RelatedStaffName: other.Name,
			},
		})
	}

	return out
}
