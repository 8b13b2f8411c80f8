// Package catalog documents the stable message-key set the scheduling core
// emits through its injected formatter hook. The core never hard-codes
// user-facing text (spec §6); this package is the contract between the
// core and whatever i18n layer a caller wires in, adapted from the
// constraint-metadata catalog shape the teacher ships for its constraint
// library UI.
package catalog

import "fmt"

// Key is a stable, language-agnostic message identifier.
type Key string

const (
	KeyViolationBlockedTime         Key = "violation.blocked_time"
	KeyViolationIncompatibleStaff   Key = "violation.incompatible_staff"
	KeyViolationDailyShiftLimit     Key = "violation.daily_shift_limit"
	KeyViolationWeeklyShiftLimit    Key = "violation.weekly_shift_limit"
	KeyViolationMonthlyShiftLimit   Key = "violation.monthly_shift_limit"
	KeyViolationYearlyShiftLimit    Key = "violation.yearly_shift_limit"
	KeyViolationRestDaysWithStaff   Key = "violation.rest_days_with_staff"
	KeyViolationConsecutiveRestDays Key = "violation.consecutive_rest_days"

	KeyPeriodDay   Key = "period.day"
	KeyPeriodWeek  Key = "period.week"
	KeyPeriodMonth Key = "period.month"
	KeyPeriodYear  Key = "period.year"

	KeyStatusProperlyStaffed       Key = "status.properly_staffed"
	KeyStatusUnderstaffed          Key = "status.understaffed"
	KeyStatusOverstaffed           Key = "status.overstaffed"
	KeyStatusNotStaffed            Key = "status.not_staffed"
	KeyStatusUnderstaffedByTrait   Key = "status.understaffed_by_trait"
	KeyStatusConstraintViolation   Key = "status.constraint_violation"

	KeyWarningUnfilledShifts     Key = "warning.unfilled_shifts"
	KeyWarningUnderstaffedShifts Key = "warning.understaffed_shifts"
	KeyWarningAllConstraintsMet  Key = "warning.all_constraints_respected"
)

// Formatter is the injected `(key, params) -> string` hook. The core is
// given one at every entry point and never constructs user-facing text
// itself.
type Formatter func(key Key, params map[string]any) string

// Default is a plain-English formatter usable when a caller has not wired
// its own i18n layer — tests and the reference server use it as-is.
func Default(key Key, params map[string]any) string {
	switch key {
	case KeyViolationBlockedTime:
		return fmt.Sprintf("%v is blocked during this occurrence", params["staffName"])
	case KeyViolationIncompatibleStaff:
		return fmt.Sprintf("%v is incompatible with %v", params["staffName"], params["peerName"])
	case KeyViolationDailyShiftLimit:
		return fmt.Sprintf("%v would work %v shifts on %v, exceeding the daily limit of %v", params["staffName"], params["current"], params["period"], params["limit"])
	case KeyViolationWeeklyShiftLimit:
		return fmt.Sprintf("%v would work %v shifts in %v, exceeding the weekly limit of %v", params["staffName"], params["current"], params["period"], params["limit"])
	case KeyViolationMonthlyShiftLimit:
		return fmt.Sprintf("%v would work %v shifts in %v, exceeding the monthly limit of %v", params["staffName"], params["current"], params["period"], params["limit"])
	case KeyViolationYearlyShiftLimit:
		return fmt.Sprintf("%v would work %v shifts in %v, exceeding the yearly limit of %v", params["staffName"], params["current"], params["period"], params["limit"])
	case KeyViolationRestDaysWithStaff:
		return fmt.Sprintf("%v and %v would share only %v rest day(s) in %v, below the required %v", params["staffName"], params["peerName"], params["current"], params["period"], params["limit"])
	case KeyViolationConsecutiveRestDays:
		return fmt.Sprintf("%v's longest rest run in %v is %v day(s), below the required %v", params["staffName"], params["period"], params["current"], params["limit"])
	case KeyStatusProperlyStaffed:
		return "properly staffed"
	case KeyStatusUnderstaffed:
		return fmt.Sprintf("understaffed: %v of %v filled", params["current"], params["required"])
	case KeyStatusOverstaffed:
		return fmt.Sprintf("overstaffed: %v of %v filled", params["current"], params["required"])
	case KeyStatusNotStaffed:
		return "not staffed"
	case KeyStatusUnderstaffedByTrait:
		return fmt.Sprintf("missing required trait %v (%v of %v)", params["traitName"], params["current"], params["required"])
	case KeyStatusConstraintViolation:
		return "one or more assigned staff violate a constraint"
	case KeyWarningUnfilledShifts:
		return fmt.Sprintf("%v shift(s) have no staff assigned", params["count"])
	case KeyWarningUnderstaffedShifts:
		return fmt.Sprintf("%v shift(s) are below their required staff count", params["count"])
	case KeyWarningAllConstraintsMet:
		return "all constraints were respected"
	default:
		return string(key)
	}
}

// PeriodKey maps a period label ("day"/"week"/"month"/"year") to its
// catalog key, used by validators to keep the message-formatting hook
// language-agnostic about period names too.
func PeriodKey(period string) Key {
	switch period {
	case "day":
		return KeyPeriodDay
	case "week":
		return KeyPeriodWeek
	case "month":
		return KeyPeriodMonth
	case "year":
		return KeyPeriodYear
	default:
		return KeyPeriodDay
	}
}
