package scheduling

import (
	"github.com/paiban/shiftplan/pkg/scheduling/model"
	"github.com/paiban/shiftplan/pkg/scheduling/validate"
)

// Validate is external operation #2 (spec.md §6): it evaluates a single
// (staff, occurrence, world) context against all eight constraint kinds
// and returns every violation found, severity-sorted. It never fails —
// ctx fully determines the (possibly empty) result.
func Validate(ctx *validate.Context) []model.ConstraintViolation {
	return validate.Validate(ctx)
}
