// Package handler exposes the scheduling core over JSON/HTTP.
package handler

import (
	"time"

	"github.com/paiban/shiftplan/pkg/scheduling/model"
)

// TraitDTO is the wire form of model.Trait.
type TraitDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StaffDTO is the wire form of model.StaffMember.
type StaffDTO struct {
	ID                  string               `json:"id"`
	Name                string               `json:"name"`
	Traits              []string             `json:"traits,omitempty"`
	MaxShiftsPerDay     *int                 `json:"max_shifts_per_day,omitempty"`
	MaxShiftsPerWeek    *int                 `json:"max_shifts_per_week,omitempty"`
	MaxShiftsPerMonth   *int                 `json:"max_shifts_per_month,omitempty"`
	MaxShiftsPerYear    *int                 `json:"max_shifts_per_year,omitempty"`
	IncompatibleWith    []string             `json:"incompatible_with,omitempty"`
	RestDaysWithStaff   []RestDaysWithStaffDTO `json:"rest_days_with_staff,omitempty"`
	ConsecutiveRestDays []ConsecutiveRestDaysDTO `json:"consecutive_rest_days,omitempty"`
	BlockedTimes        []BlockedTimeDTO     `json:"blocked_times,omitempty"`
}

// RestDaysWithStaffDTO is the wire form of model.RestDaysWithStaff.
type RestDaysWithStaffDTO struct {
	Peer        string `json:"peer"`
	MinRestDays int    `json:"min_rest_days"`
	Period      string `json:"period"`
}

// ConsecutiveRestDaysDTO is the wire form of model.ConsecutiveRestDays.
type ConsecutiveRestDaysDTO struct {
	MinConsecutiveDays int    `json:"min_consecutive_days"`
	Period             string `json:"period"`
}

// BlockedTimeDTO is the wire form of model.BlockedTime.
type BlockedTimeDTO struct {
	ID        string          `json:"id"`
	Start     time.Time       `json:"start"`
	End       time.Time       `json:"end"`
	IsFullDay bool            `json:"is_full_day,omitempty"`
	Recurrence *RecurrenceDTO `json:"recurrence,omitempty"`
}

// RecurrenceDTO is the wire form of model.Recurrence.
type RecurrenceDTO struct {
	Type     string   `json:"type"`
	Interval int      `json:"interval"`
	Weekdays []int    `json:"weekdays,omitempty"`
	EndDate  *time.Time `json:"end_date,omitempty"`
}

// RequiredTraitDTO is the wire form of model.RequiredTrait.
type RequiredTraitDTO struct {
	TraitID  string `json:"trait_id"`
	MinCount int    `json:"min_count"`
}

// ShiftRequirementsDTO is the wire form of model.ShiftRequirements.
type ShiftRequirementsDTO struct {
	StaffCount      int                `json:"staff_count"`
	RequiredTraits  []RequiredTraitDTO `json:"required_traits,omitempty"`
	ExcludedTraits  []string           `json:"excluded_traits,omitempty"`
	PreferredTraits []string           `json:"preferred_traits,omitempty"`
}

// OccurrenceDTO is the wire form of model.ShiftOccurrence.
type OccurrenceDTO struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Start         time.Time            `json:"start"`
	End           time.Time            `json:"end"`
	Requirements  ShiftRequirementsDTO `json:"requirements"`
	AssignedStaff []string             `json:"assigned_staff,omitempty"`
}

func traitFromDTO(d TraitDTO) model.Trait {
	return model.Trait{ID: model.TraitID(d.ID), Name: d.Name}
}

func staffFromDTO(d StaffDTO) model.StaffMember {
	traitIDs := make(map[model.TraitID]bool, len(d.Traits))
	for _, t := range d.Traits {
		traitIDs[model.TraitID(t)] = true
	}

	incompatible := make([]model.StaffID, len(d.IncompatibleWith))
	for i, id := range d.IncompatibleWith {
		incompatible[i] = model.StaffID(id)
	}

	restDays := make([]model.RestDaysWithStaff, len(d.RestDaysWithStaff))
	for i, r := range d.RestDaysWithStaff {
		restDays[i] = model.RestDaysWithStaff{
			Peer:        model.StaffID(r.Peer),
			MinRestDays: r.MinRestDays,
			Period:      model.Period(r.Period),
		}
	}

	consecutive := make([]model.ConsecutiveRestDays, len(d.ConsecutiveRestDays))
	for i, c := range d.ConsecutiveRestDays {
		consecutive[i] = model.ConsecutiveRestDays{
			MinConsecutiveDays: c.MinConsecutiveDays,
			Period:             model.Period(c.Period),
		}
	}

	blocked := make([]model.BlockedTime, len(d.BlockedTimes))
	for i, b := range d.BlockedTimes {
		bt := model.BlockedTime{ID: b.ID, Start: b.Start, End: b.End, IsFullDay: b.IsFullDay}
		if b.Recurrence != nil {
			weekdays := make(map[time.Weekday]bool, len(b.Recurrence.Weekdays))
			for _, wd := range b.Recurrence.Weekdays {
				weekdays[time.Weekday(wd)] = true
			}
			bt.Recurrence = &model.Recurrence{
				Type:     model.RecurrenceType(b.Recurrence.Type),
				Interval: b.Recurrence.Interval,
				Weekdays: weekdays,
				EndDate:  b.Recurrence.EndDate,
			}
		}
		blocked[i] = bt
	}

	return model.StaffMember{
		ID:       model.StaffID(d.ID),
		Name:     d.Name,
		TraitIDs: traitIDs,
		Constraints: model.StaffConstraints{
			MaxShiftsPerDay:     d.MaxShiftsPerDay,
			MaxShiftsPerWeek:    d.MaxShiftsPerWeek,
			MaxShiftsPerMonth:   d.MaxShiftsPerMonth,
			MaxShiftsPerYear:    d.MaxShiftsPerYear,
			IncompatibleWith:    incompatible,
			RestDaysWithStaff:   restDays,
			ConsecutiveRestDays: consecutive,
		},
		BlockedTimes: blocked,
	}
}

func occurrenceFromDTO(d OccurrenceDTO) model.ShiftOccurrence {
	requiredTraits := make([]model.RequiredTrait, len(d.Requirements.RequiredTraits))
	for i, rt := range d.Requirements.RequiredTraits {
		requiredTraits[i] = model.RequiredTrait{TraitID: model.TraitID(rt.TraitID), MinCount: rt.MinCount}
	}

	excluded := make(map[model.TraitID]bool, len(d.Requirements.ExcludedTraits))
	for _, t := range d.Requirements.ExcludedTraits {
		excluded[model.TraitID(t)] = true
	}

	preferred := make(map[model.TraitID]bool, len(d.Requirements.PreferredTraits))
	for _, t := range d.Requirements.PreferredTraits {
		preferred[model.TraitID(t)] = true
	}

	assigned := make([]model.StaffID, len(d.AssignedStaff))
	for i, id := range d.AssignedStaff {
		assigned[i] = model.StaffID(id)
	}

	return model.ShiftOccurrence{
		ID:   model.OccurrenceID(d.ID),
		Name: d.Name,
		Start: d.Start,
		End:   d.End,
		Requirements: model.ShiftRequirements{
			StaffCount:      d.Requirements.StaffCount,
			RequiredTraits:  requiredTraits,
			ExcludedTraits:  excluded,
			PreferredTraits: preferred,
		},
		AssignedStaff: assigned,
	}
}

func assignmentMapToDTO(a model.AssignmentMap) map[string][]string {
	out := make(map[string][]string, len(a))
	for occID, staffIDs := range a {
		ids := make([]string, len(staffIDs))
		for i, s := range staffIDs {
			ids[i] = string(s)
		}
		out[string(occID)] = ids
	}
	return out
}
